// This file implements the Strategy Pattern for recurrence stepping.
// Each recurrence rule has its own stepper that computes the n-th occurrence
// from the anchor date.

package cashflow

import (
	"fmt"

	"budgetcal/internal/core"
)

// Stepper is the strategy interface for placing occurrences of a recurring event.
type Stepper interface {
	// Nth returns the date of occurrence n (0 is the anchor itself). It must
	// be strictly increasing in n.
	Nth(anchor core.Date, n int) core.Date
}

// DayStepper repeats every fixed number of days.
type DayStepper struct {
	Days int
}

func (s DayStepper) Nth(anchor core.Date, n int) core.Date {
	return anchor.AddDays(s.Days * n)
}

// MonthStepper repeats on the anchor's day of month, clamped to the last day
// of shorter months. It always counts from the anchor, so a 31st anchor
// returns to the 31st after passing through February.
type MonthStepper struct{}

func (MonthStepper) Nth(anchor core.Date, n int) core.Date {
	return anchor.AddMonthsClamped(n)
}

var steppers = map[core.Recurrence]Stepper{
	core.Weekly:   DayStepper{Days: 7},
	core.Biweekly: DayStepper{Days: 14},
	core.Monthly:  MonthStepper{},
}

// StepperFor returns the stepper for a recurring rule.
func StepperFor(r core.Recurrence) (Stepper, error) {
	s, ok := steppers[r]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownRecurrence, r)
	}
	return s, nil
}

// RegisterStepper installs a stepper for a rule. Call it during init only;
// the registry is read concurrently afterwards.
func RegisterStepper(r core.Recurrence, s Stepper) {
	steppers[r] = s
}
