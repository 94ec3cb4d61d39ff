package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/rtgscope/internal/adapters/turso"
	"github.com/emiliopalmerini/rtgscope/internal/adapters/upstream"
	"github.com/emiliopalmerini/rtgscope/internal/auth"
	"github.com/emiliopalmerini/rtgscope/internal/config"
	"github.com/emiliopalmerini/rtgscope/internal/dashboard"
	"github.com/emiliopalmerini/rtgscope/internal/domain"
	"github.com/emiliopalmerini/rtgscope/internal/logger"
	"github.com/emiliopalmerini/rtgscope/internal/migrate"
	"github.com/emiliopalmerini/rtgscope/internal/ports"
)

const testSecret = "test-secret"

type stubRepository struct {
	experiments []*domain.Experiment
	err         error
}

func (s *stubRepository) Create(ctx context.Context, e *domain.Experiment) error { return nil }

func (s *stubRepository) GetByID(ctx context.Context, id string) (*domain.Experiment, error) {
	return nil, nil
}

func (s *stubRepository) List(ctx context.Context) ([]*domain.Experiment, error) {
	return s.experiments, s.err
}

func (s *stubRepository) Delete(ctx context.Context, id string) error { return nil }

var _ ports.ExperimentRepository = (*stubRepository)(nil)

func testRepo(t *testing.T) ports.ExperimentRepository {
	t.Helper()
	db, err := turso.NewDB(config.Database{URL: "file:" + filepath.Join(t.TempDir(), "web.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrate.RunAll(context.Background(), db))
	return turso.NewRepositories(db).Experiments
}

func issue(t *testing.T, role string) string {
	t.Helper()
	token, err := auth.NewAuthenticator(testSecret).Issue("alice", role, time.Hour)
	require.NoError(t, err)
	return token
}

func get(t *testing.T, h http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func countRows(html string) int {
	return strings.Count(html, "<tr data-id=")
}

func TestDashboard_EmptyBeforeLoad(t *testing.T) {
	view := dashboard.NewView(&dashboard.MockSource{})
	s := NewDashboardServer(0, view, WithLogger(logger.Test(t)))

	rec := get(t, s.Handler(), "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>RTG Microscopy Dashboard</h1>")
	assert.Contains(t, body, "<th>Date</th>")
	assert.Equal(t, 0, countRows(body))
	assert.Contains(t, body, `hx-get="/partials/experiments"`)
}

func TestDashboard_RendersLoadedRows(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"acquisition_date":"2024-01-01","user_id":"alice","microscope":"M1","objective":"40x","channels":["DAPI","GFP"],"eln_id":"E-100"}]`))
	}))
	defer upstreamSrv.Close()

	view := dashboard.NewView(upstream.NewClient(config.Upstream{URL: upstreamSrv.URL}))
	view.Load(context.Background())
	s := NewDashboardServer(0, view)

	rec := get(t, s.Handler(), "/partials/experiments", nil)

	body := rec.Body.String()
	assert.Equal(t, 1, countRows(body))
	assert.Contains(t, body, "<td>2024-01-01</td><td>alice</td><td>M1</td><td>40x</td><td>DAPI, GFP</td><td>E-100</td>")
	assert.Contains(t, body, `data-state="loaded"`)
	assert.NotContains(t, body, "<html")
}

func TestDashboard_NumericELNIDRendersEveryRow(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"acquisition_date":"2024-01-01","user_id":"alice","microscope":"M1","objective":"40x","channels":["DAPI"],"eln_id":"E-100"},
			{"id":2,"acquisition_date":"2024-01-02","user_id":"bob","microscope":"M2","objective":"63x","channels":["GFP"],"eln_id":4711}
		]`))
	}))
	defer upstreamSrv.Close()

	view := dashboard.NewView(upstream.NewClient(config.Upstream{URL: upstreamSrv.URL}))
	view.Load(context.Background())
	s := NewDashboardServer(0, view)

	body := get(t, s.Handler(), "/partials/experiments", nil).Body.String()

	assert.Equal(t, 2, countRows(body))
	assert.Contains(t, body, "<td>E-100</td>")
	assert.Contains(t, body, "<td>4711</td>")
}

func TestDashboard_HTMXRequestGetsFragment(t *testing.T) {
	s := NewDashboardServer(0, dashboard.NewView(&dashboard.MockSource{}))

	rec := get(t, s.Handler(), "/", map[string]string{"HX-Request": "true"})

	assert.NotContains(t, rec.Body.String(), "<html")
	assert.Contains(t, rec.Body.String(), `id="experiments"`)
}

func TestDashboard_FailedLoadStaysEmpty(t *testing.T) {
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstreamSrv.Close()

	view := dashboard.NewView(upstream.NewClient(config.Upstream{URL: upstreamSrv.URL}))
	view.Load(context.Background())
	s := NewDashboardServer(0, view)

	rec := get(t, s.Handler(), "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, countRows(rec.Body.String()))
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "error")
}

func TestDashboard_StaticAndHealth(t *testing.T) {
	s := NewDashboardServer(0, dashboard.NewView(&dashboard.MockSource{}))

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/static/style.css", nil).Code)
	assert.Equal(t, "ok", get(t, s.Handler(), "/health", nil).Body.String())
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/nope", nil).Code)
}

func TestAPI_ListExperimentsAuth(t *testing.T) {
	repo := &stubRepository{experiments: []*domain.Experiment{{ID: "a", UserID: "alice"}}}
	s := NewAPIServer(0, repo, auth.NewAuthenticator(testSecret))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{"missing token", "", http.StatusUnauthorized, "Not authenticated"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Not authenticated"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "Invalid authentication credentials"},
		{"student", "Bearer " + issue(t, auth.RoleStudent), http.StatusForbidden, "Forbidden"},
		{"admin", "Bearer " + issue(t, auth.RoleAdmin), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.header != "" {
				header["Authorization"] = tt.header
			}

			rec := get(t, s.Handler(), "/experiments", header)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantDetail != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantDetail, body["detail"])
			}
		})
	}
}

func TestAPI_ListExperimentsRepositoryError(t *testing.T) {
	s := NewAPIServer(0, &stubRepository{err: errors.New("disk gone")}, auth.NewAuthenticator(testSecret))

	rec := get(t, s.Handler(), "/experiments", map[string]string{"Authorization": "Bearer " + issue(t, auth.RoleAdmin)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk gone")
}

func TestAPI_EmptyListIsArray(t *testing.T) {
	s := NewAPIServer(0, &stubRepository{}, auth.NewAuthenticator(testSecret))

	rec := get(t, s.Handler(), "/experiments", map[string]string{"Authorization": "Bearer " + issue(t, auth.RoleAdmin)})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

// The dashboard talks to a real API server backed by a migrated database.
func TestEndToEnd_DashboardOverAPI(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	acquired := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &domain.Experiment{
		ID:              "exp-1",
		AcquisitionDate: acquired,
		UserID:          "alice",
		Microscope:      "M1",
		Objective:       "40x",
		Channels:        []string{"DAPI", "GFP"},
		ELNID:           "E-100",
		CreatedAt:       acquired,
	}))

	api := httptest.NewServer(NewAPIServer(0, repo, auth.NewAuthenticator(testSecret)).Handler())
	defer api.Close()

	view := dashboard.NewView(upstream.NewClient(config.Upstream{URL: api.URL, Token: issue(t, auth.RoleAdmin)}))
	dash := httptest.NewServer(NewDashboardServer(0, view).Handler())
	defer dash.Close()

	view.Mount(ctx)
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, view.Wait(waitCtx))

	resp, err := http.Get(dash.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := string(raw)
	assert.Equal(t, 1, countRows(body))
	assert.Contains(t, body, `<tr data-id="exp-1">`)
	assert.Contains(t, body, "<td>2024-01-01T00:00:00Z</td><td>alice</td><td>M1</td><td>40x</td><td>DAPI, GFP</td><td>E-100</td>")
}

func TestServer_StartStopsOnCancel(t *testing.T) {
	src := &dashboard.MockSource{}
	s := NewDashboardServer(0, dashboard.NewView(src))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Start(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, s.view.Wait(waitCtx), "Start mounts the view")
	assert.Equal(t, int64(1), src.Calls())

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
