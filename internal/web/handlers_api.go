package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/emiliopalmerini/rtgscope/internal/auth"
	"github.com/emiliopalmerini/rtgscope/internal/domain"
)

type userKey struct{}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// requireAdmin rejects requests without a valid admin bearer token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.metrics.RecordListing(r.Context(), 0, http.StatusUnauthorized)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		user, err := s.authn.Parse(token)
		if err != nil {
			s.metrics.RecordListing(r.Context(), 0, http.StatusUnauthorized)
			s.lggr.Debugw("rejected token", "err", err)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Invalid authentication credentials")
			return
		}

		if !user.IsAdmin() {
			s.metrics.RecordListing(r.Context(), 0, http.StatusForbidden)
			writeDetail(w, http.StatusForbidden, "Forbidden")
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) *auth.User {
	u, _ := ctx.Value(userKey{}).(*auth.User)
	return u
}

func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	experiments, err := s.experimentRepo.List(ctx)
	if err != nil {
		s.metrics.RecordListing(ctx, 0, http.StatusInternalServerError)
		s.lggr.Errorw("list experiments", "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	records := make([]domain.ExperimentRecord, 0, len(experiments))
	for _, e := range experiments {
		records = append(records, e.Record())
	}

	if u := userFrom(ctx); u != nil {
		s.lggr.Debugw("listing experiments", "user", u.Username, "rows", len(records))
	}
	s.metrics.RecordListing(ctx, len(records), http.StatusOK)
	writeJSON(w, http.StatusOK, records)
}
