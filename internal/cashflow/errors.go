// Package cashflow is the projection engine: it expands recurring events into
// dated occurrences, folds them into a dense daily balance, extrapolates a
// forecast and derives summaries, risk days and goal progress.
//
// Every function here is pure. Dirty records are skipped and reported as
// Warnings; only misuse (inverted ranges, negative horizons) returns an error.
package cashflow

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange      = errors.New("invalid date range")
	ErrInvalidHorizon    = errors.New("invalid horizon")
	ErrInvalidLookback   = errors.New("invalid lookback")
	ErrMissingToday      = errors.New("reference date is required")
	ErrTypeMismatch      = errors.New("event type disagrees with amount sign")
	ErrStepDidNotAdvance = errors.New("recurrence step did not advance")
)

// Warning records an event that was skipped or adjusted during expansion.
type Warning struct {
	EventID string
	Err     error
}

func (w Warning) Error() string {
	id := w.EventID
	if id == "" {
		id = "<unsaved>"
	}
	return fmt.Sprintf("event %s: %v", id, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }
