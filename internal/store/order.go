package store

import (
	"sort"

	"budgetcal/internal/core"
)

// SortEvents orders events by date, then creation time, then id, the order
// every backend returns from ListEvents. Same-day occurrences are expanded in
// this order.
func SortEvents(events []core.Event) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SortGoals orders goals by creation time, then id.
func SortGoals(goals []core.Goal) {
	sort.Slice(goals, func(i, j int) bool {
		a, b := goals[i], goals[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
