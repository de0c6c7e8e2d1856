package http

import (
	"net/http"

	"spendwise/internal/auth"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/presenter"
	"spendwise/internal/stats"
)

// dashboard loads the view model for the current user, answering the
// request itself when loading fails.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) (presenter.Dashboard, bool) {
	d, err := s.expenses.Dashboard(r.Context(), auth.UserID(r.Context()), s.clock())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to load dashboard",
			log.FieldOperation, log.OpList, log.FieldError, err)
		ErrorResponse(http.StatusBadGateway, "Could not load expenses. Please retry.").Write(w)
		return presenter.Dashboard{}, false
	}
	return d, true
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.dashboard(w, r); ok {
		s.render(w, r, http.StatusOK, "stats", d)
	}
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.dashboard(w, r); ok {
		s.render(w, r, http.StatusOK, "chart", d)
	}
}

func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.dashboard(w, r); ok {
		s.render(w, r, http.StatusOK, "expenses", d)
	}
}

// handleAPIExpenses lists the user's expenses. Anonymous callers get an
// empty list.
func (s *Server) handleAPIExpenses(w http.ResponseWriter, r *http.Request) {
	list, err := s.expenses.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list expenses",
			log.FieldOperation, log.OpList, log.FieldError, err)
		writeJSON(w, r, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	if list == nil {
		list = []core.Expense{}
	}
	writeJSON(w, r, http.StatusOK, list)
}

type statsResponse struct {
	stats.Summary
	Breakdown []stats.Slice `json:"breakdown"`
}

// handleAPIStats returns the summary and category breakdown for the month
// given as ?month=YYYY-MM, defaulting to the current month.
func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	now := ParseMonthParam(r.URL.Query(), s.clock())

	list, err := s.expenses.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to list expenses",
			log.FieldOperation, log.OpList, log.FieldError, err)
		writeJSON(w, r, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	breakdown := stats.Breakdown(stats.InMonth(list, now))
	if breakdown == nil {
		breakdown = []stats.Slice{}
	}
	writeJSON(w, r, http.StatusOK, statsResponse{
		Summary:   stats.Compute(list, now),
		Breakdown: breakdown,
	})
}
