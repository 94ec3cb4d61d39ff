package web

import (
	"net/http"

	"github.com/emiliopalmerini/rtgscope/internal/dashboard"
	sharedmw "github.com/emiliopalmerini/rtgscope/internal/shared/middleware"
	"github.com/emiliopalmerini/rtgscope/internal/web/templates"
)

func (s *Server) experimentsTable() templates.ExperimentsTable {
	snap := s.view.Snapshot()
	return templates.ExperimentsTable{
		Loaded:    snap.State == dashboard.StateLoaded,
		Rows:      templates.RowsFromRecords(snap.Records),
		PollEvery: s.pollEvery,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if sharedmw.IsHTMX(r) {
		s.renderExperiments(w, r)
		return
	}

	page := templates.DashboardPage{
		Title: dashboardTitle,
		Table: s.experimentsTable(),
	}
	if err := templates.Dashboard(page).Render(r.Context(), w); err != nil {
		s.lggr.Debugw("render dashboard", "err", err)
	}
}

func (s *Server) handleExperimentsPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.renderExperiments(w, r)
}

func (s *Server) renderExperiments(w http.ResponseWriter, r *http.Request) {
	if err := templates.Experiments(s.experimentsTable()).Render(r.Context(), w); err != nil {
		s.lggr.Debugw("render experiments", "err", err)
	}
}
