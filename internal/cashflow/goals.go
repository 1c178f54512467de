package cashflow

import (
	"strings"

	"github.com/shopspring/decimal"

	"budgetcal/internal/core"
)

var hundred = decimal.NewFromInt(100)

// GoalProgress sums the net contribution of the raw events dated between the
// goal's start date and deadline (either bound optional). A goal with a
// category only counts events of that category, case-insensitively. Percent
// is saved/target rounded to a whole number and clamped to [0, 100]; a goal
// without a positive target reports 0.
func GoalProgress(goal core.Goal, events []core.Event) core.GoalProgress {
	var (
		start, end       core.Date
		hasStart, hasEnd bool
	)
	if d, err := core.ParseDate(goal.StartDate); err == nil {
		start, hasStart = d, true
	}
	if d, err := core.ParseDate(goal.Deadline); err == nil {
		end, hasEnd = d, true
	}
	category := strings.TrimSpace(goal.Category)

	var saved core.Money
	for _, e := range events {
		d, err := core.ParseDate(e.Date)
		if err != nil {
			continue
		}
		if (hasStart && d.Before(start)) || (hasEnd && d.After(end)) {
			continue
		}
		if category != "" && !strings.EqualFold(strings.TrimSpace(e.Category), category) {
			continue
		}
		saved = saved.Add(e.Amount)
	}

	progress := core.GoalProgress{Goal: goal, Saved: saved}
	if goal.Target.Cents <= 0 {
		return progress
	}
	pct := saved.Decimal().Mul(hundred).Div(goal.Target.Decimal()).Round(0).IntPart()
	progress.Percent = int(max(0, min(100, pct)))
	return progress
}

// GoalsProgress evaluates every goal against the same events.
func GoalsProgress(goals []core.Goal, events []core.Event) []core.GoalProgress {
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		out = append(out, GoalProgress(g, events))
	}
	return out
}
