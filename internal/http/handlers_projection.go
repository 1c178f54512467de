package http

import (
	"net/http"

	"budgetcal/internal/auth"
	"budgetcal/internal/cashflow"
	"budgetcal/internal/services"
)

func (s *Server) currency(r *http.Request) (string, error) {
	st, err := s.projections.Settings(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		return "", err
	}
	return st.Currency, nil
}

// projectionRequest reads today, days, forecast, lookback, opening,
// threshold and carry from the query string.
func projectionRequest(r *http.Request) (services.ProjectionRequest, error) {
	var (
		req services.ProjectionRequest
		err error
	)
	if req.Today, err = queryDate(r, "today", req.Today); err != nil {
		return req, err
	}
	if req.HistoryDays, err = queryBoundedInt(r, "days", cashflow.MaxHorizonDays); err != nil {
		return req, err
	}
	if req.ForecastDays, err = queryBoundedInt(r, "forecast", cashflow.MaxHorizonDays); err != nil {
		return req, err
	}
	if req.LookbackDays, err = queryBoundedInt(r, "lookback", cashflow.MaxHorizonDays); err != nil {
		return req, err
	}
	if req.Opening, err = queryMoney(r, "opening"); err != nil {
		return req, err
	}
	if req.Threshold, err = queryMoney(r, "threshold"); err != nil {
		return req, err
	}
	if req.CarryPast, err = queryBool(r, "carry"); err != nil {
		return req, err
	}
	return req, nil
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	req, err := projectionRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	withOccurrences, err := queryBool(r, "occurrences")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	withChart, err := queryBool(r, "chart")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur, err := s.currency(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, cached, err := s.projections.Project(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	first, last := s.projections.CurrentMonthOf(p.Today)
	view := projectionView{
		Today:    p.Today,
		Currency: cur,
		Opening:  newAmount(p.Opening, cur),
		Balances: newBalances(p.Balances, cur),
		Forecast: newBalances(p.Forecast, cur),
		Risk:     newBalances(p.Risk, cur),
		Summary:  newSummary(p.Summary, first, last, cur),
		Warnings: len(p.Warnings),
		Cached:   cached,
	}
	if withOccurrences {
		view.Occurrences = newOccurrences(p.Occurrences, cur)
	}
	if withChart {
		chart := p.Chart()
		view.Chart = &chart
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	req, err := projectionRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur, err := s.currency(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, _, err := s.projections.Project(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view := riskView{
		Threshold: newAmount(req.Threshold, cur),
		AtRisk:    len(p.Risk) > 0,
		Days:      newBalances(p.Risk, cur),
	}
	if view.AtRisk {
		view.First = &view.Days[0]
	}
	writeJSON(w, http.StatusOK, view)
}

// handleOccurrences expands events for the calendar, by default over the
// next twelve months.
func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	today := s.projections.Today()
	from, err := queryDate(r, "from", today)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to", from.AddMonthsClamped(cashflow.DefaultPreviewMonths))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur, err := s.currency(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	exp, err := s.projections.Occurrences(r.Context(), auth.UserID(r.Context()), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":        from,
		"to":          to,
		"occurrences": newOccurrences(exp.Occurrences, cur),
		"warnings":    len(exp.Warnings),
	})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from", s.projections.Today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to", from.AddDays(cashflow.DefaultHistoryDays-1))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opening, err := queryMoney(r, "opening")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur, err := s.currency(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	points, err := s.projections.Balances(r.Context(), auth.UserID(r.Context()), from, to, opening)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":     from,
		"to":       to,
		"opening":  newAmount(opening, cur),
		"balances": newBalances(points, cur),
	})
}

// handleSummary totals a period, by default the current month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	first, last := s.projections.CurrentMonth()
	from, err := queryDate(r, "from", first)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to", last)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cur, err := s.currency(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.projections.Summary(r.Context(), auth.UserID(r.Context()), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummary(sum, from, to, cur))
}
