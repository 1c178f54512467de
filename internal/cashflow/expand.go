package cashflow

import (
	"fmt"
	"sort"
	"strings"

	"budgetcal/internal/core"
)

// Expansion is the result of turning events into dated occurrences.
type Expansion struct {
	Occurrences []core.Occurrence
	Warnings    []Warning
}

// Expand returns every occurrence dated within [from, to], ordered by date.
// Events with equal dates keep their input order.
func Expand(events []core.Event, from, to core.Date) (Expansion, error) {
	if from.After(to) {
		return Expansion{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, from, to)
	}
	return expand(events, &from, to), nil
}

// ExpandAll returns every occurrence dated on or before to, past ones
// included. Balance aggregation needs the full history behind the window.
func ExpandAll(events []core.Event, to core.Date) Expansion {
	return expand(events, nil, to)
}

func expand(events []core.Event, from *core.Date, to core.Date) Expansion {
	var out Expansion
	inWindow := func(d core.Date) bool {
		if d.After(to) {
			return false
		}
		return from == nil || !d.Before(*from)
	}

	for i := range events {
		e := events[i]
		warn := func(err error) {
			out.Warnings = append(out.Warnings, Warning{EventID: e.ID, Err: err})
		}

		anchor, err := core.ParseDate(e.Date)
		if err != nil {
			warn(err)
			continue
		}
		rule, ok := e.Recurring.Normalize()
		if !ok {
			warn(fmt.Errorf("%w: %q treated as none", core.ErrUnknownRecurrence, e.Recurring))
		}
		if e.TypeConflict() {
			warn(fmt.Errorf("%w: type %s, amount %s", ErrTypeMismatch, e.Type, e.Amount))
		}

		emit := func(d core.Date) {
			occ := core.Occurrence{Event: e, On: d, Origin: &events[i]}
			occ.Date = d.String()
			out.Occurrences = append(out.Occurrences, occ)
		}

		if rule == core.None {
			if inWindow(anchor) {
				emit(anchor)
			}
			continue
		}

		upper := to
		if strings.TrimSpace(e.RecurringEnds) != "" {
			ends, err := core.ParseDate(e.RecurringEnds)
			if err != nil {
				warn(fmt.Errorf("recurring end: %w", err))
				continue
			}
			if ends.Before(upper) {
				upper = ends
			}
		}

		step, err := StepperFor(rule)
		if err != nil {
			warn(err)
			continue
		}
		var prev core.Date
		for n := 0; ; n++ {
			d := step.Nth(anchor, n)
			if n > 0 && !d.After(prev) {
				warn(fmt.Errorf("%w: %s at step %d", ErrStepDidNotAdvance, rule, n))
				break
			}
			if d.After(upper) {
				break
			}
			if from == nil || !d.Before(*from) {
				emit(d)
			}
			prev = d
		}
	}

	sort.SliceStable(out.Occurrences, func(a, b int) bool {
		return out.Occurrences[a].On.Before(out.Occurrences[b].On)
	})
	return out
}
