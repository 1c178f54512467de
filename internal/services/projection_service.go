package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"budgetcal/internal/cache"
	"budgetcal/internal/cashflow"
	"budgetcal/internal/core"
	"budgetcal/internal/log"
	"budgetcal/internal/store"
)

// ProjectionRequest is the caller-controlled part of a projection. Zero
// values fall back to the user's settings and the engine defaults.
type ProjectionRequest struct {
	Today        core.Date
	HistoryDays  int
	ForecastDays int
	LookbackDays int
	Opening      core.Money
	Threshold    core.Money
	CarryPast    bool
}

func (r ProjectionRequest) key(userID string) string {
	return fmt.Sprintf("%s|%s|%d|%d|%d|%d|%d|%t", userID, r.Today, r.HistoryDays, r.ForecastDays,
		r.LookbackDays, r.Opening.Cents, r.Threshold.Cents, r.CarryPast)
}

// ProjectionService loads a user's snapshot and runs the cashflow engine
// over it. Results are cached per request until the user's data changes.
type ProjectionService struct {
	store    store.Store
	cache    cache.Cache[cashflow.Projection]
	defaults core.Settings
	today    func() core.Date
	logger   *log.Logger
	slog     *log.StructuredLogger

	// gens counts invalidations per user; a projection computed across an
	// invalidation is not cached.
	mu   sync.Mutex
	gens map[string]uint64
}

func NewProjectionService(st store.Store, c cache.Cache[cashflow.Projection], defaults core.Settings, logger *log.Logger) *ProjectionService {
	if logger == nil {
		logger = log.FromDefault(log.ComponentProjection)
	}
	return &ProjectionService{
		store:    st,
		cache:    c,
		defaults: core.DefaultSettings().Merge(defaults),
		today:    core.Today,
		logger:   logger,
		slog:     log.NewStructuredLogger(logger),
		gens:     make(map[string]uint64),
	}
}

// Settings returns the user's settings over the configured defaults.
func (s *ProjectionService) Settings(ctx context.Context, userID string) (core.Settings, error) {
	st, err := s.store.GetSettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return s.defaults, nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s.defaults.Merge(st), nil
}

// PutSettings validates and stores the merged settings document.
func (s *ProjectionService) PutSettings(ctx context.Context, userID string, in core.Settings) (core.Settings, error) {
	current, err := s.Settings(ctx, userID)
	if err != nil {
		return core.Settings{}, err
	}
	merged := current.Merge(in)
	if err := merged.Validate(); err != nil {
		return core.Settings{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.store.PutSettings(ctx, userID, merged); err != nil {
		return core.Settings{}, fmt.Errorf("put settings: %w", err)
	}
	s.Invalidate(userID)
	return merged, nil
}

// Project runs the full pipeline. The boolean reports a cache hit.
func (s *ProjectionService) Project(ctx context.Context, userID string, req ProjectionRequest) (cashflow.Projection, bool, error) {
	if req.Today.IsZero() {
		req.Today = s.today()
	}
	if req.ForecastDays == 0 {
		settings, err := s.Settings(ctx, userID)
		if err != nil {
			return cashflow.Projection{}, false, err
		}
		req.ForecastDays = settings.ForecastDays
	}

	key := req.key(userID)
	if s.cache != nil {
		if p, ok := s.cache.Get(key); ok {
			s.slog.LogProjection(ctx, userID, 0, len(p.Occurrences), len(p.Risk), len(p.Warnings), true)
			return p, true, nil
		}
	}

	gen := s.generation(userID)
	events, err := s.store.ListEvents(ctx, userID)
	if err != nil {
		return cashflow.Projection{}, false, fmt.Errorf("list events: %w", err)
	}

	p, err := cashflow.Project(events, cashflow.ProjectionParams{
		Today:          req.Today,
		HistoryDays:    req.HistoryDays,
		ForecastDays:   req.ForecastDays,
		LookbackDays:   req.LookbackDays,
		OpeningBalance: req.Opening,
		RiskThreshold:  req.Threshold,
		CarryPast:      req.CarryPast,
	})
	if err != nil {
		return cashflow.Projection{}, false, err
	}
	s.logWarnings(ctx, userID, p.Warnings)

	if s.cache != nil && s.generation(userID) == gen {
		s.cache.Set(key, p)
	}
	s.slog.LogProjection(ctx, userID, len(events), len(p.Occurrences), len(p.Risk), len(p.Warnings), false)
	return p, false, nil
}

// MaxRangeDays caps the span of on-demand occurrence and balance queries.
const MaxRangeDays = 3660

func checkSpan(from, to core.Date) error {
	if to.Before(from) {
		return fmt.Errorf("%w: %s after %s", cashflow.ErrInvalidRange, from, to)
	}
	if n := from.DaysUntil(to) + 1; n > MaxRangeDays {
		return fmt.Errorf("%w: %d days from %s, at most %d", cashflow.ErrInvalidRange, n, from, MaxRangeDays)
	}
	return nil
}

// Occurrences expands the user's events for display within [from, to].
func (s *ProjectionService) Occurrences(ctx context.Context, userID string, from, to core.Date) (cashflow.Expansion, error) {
	if err := checkSpan(from, to); err != nil {
		return cashflow.Expansion{}, err
	}
	events, err := s.store.ListEvents(ctx, userID)
	if err != nil {
		return cashflow.Expansion{}, fmt.Errorf("list events: %w", err)
	}
	exp, err := cashflow.Expand(events, from, to)
	if err != nil {
		return cashflow.Expansion{}, err
	}
	s.logWarnings(ctx, userID, exp.Warnings)
	return exp, nil
}

// Balances returns the dense running balance over [from, to], counting
// every occurrence up to to.
func (s *ProjectionService) Balances(ctx context.Context, userID string, from, to core.Date, opening core.Money) ([]core.BalancePoint, error) {
	if err := checkSpan(from, to); err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	exp := cashflow.ExpandAll(events, to)
	s.logWarnings(ctx, userID, exp.Warnings)
	return cashflow.Aggregate(exp.Occurrences, from, to, opening)
}

// Summary totals income and expense of events dated within [from, to].
func (s *ProjectionService) Summary(ctx context.Context, userID string, from, to core.Date) (core.PeriodSummary, error) {
	events, err := s.store.ListEvents(ctx, userID)
	if err != nil {
		return core.PeriodSummary{}, fmt.Errorf("list events: %w", err)
	}
	return cashflow.Summarize(events, from, to)
}

// CurrentMonth returns the first and last day of the month containing today.
func (s *ProjectionService) CurrentMonth() (core.Date, core.Date) {
	return s.CurrentMonthOf(s.today())
}

// CurrentMonthOf returns the first and last day of the month containing day.
func (s *ProjectionService) CurrentMonthOf(day core.Date) (core.Date, core.Date) {
	first := core.NewDate(day.Year(), day.Month(), 1)
	return first, core.NewDate(day.Year(), day.Month(), core.DaysIn(day.Year(), day.Month()))
}

// Today is the service clock.
func (s *ProjectionService) Today() core.Date {
	return s.today()
}

// Invalidate drops every cached projection of userID and keeps projections
// already in flight from being cached.
func (s *ProjectionService) Invalidate(userID string) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.gens[userID]++
	s.mu.Unlock()
	if n := s.cache.DeletePrefix(userID + "|"); n > 0 {
		s.logger.Debug("Projection cache invalidated", log.FieldUserID, userID, "entries", n)
	}
}

func (s *ProjectionService) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[userID]
}

func (s *ProjectionService) logWarnings(ctx context.Context, userID string, warnings []cashflow.Warning) {
	for _, w := range warnings {
		s.logger.WarnContext(ctx, "Skipped dirty event data",
			log.FieldUserID, userID,
			log.FieldEventID, w.EventID,
			log.FieldError, w.Err.Error())
	}
}

// SetClock overrides the service clock; used by tests and the CLI.
func (s *ProjectionService) SetClock(now func() time.Time) {
	s.today = func() core.Date { return core.DateOf(now()) }
}
