package store

import (
	"testing"
	"time"

	"budgetcal/internal/core"
)

func TestSortEvents(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []core.Event{
		{ID: "late", Date: "2025-02-01", CreatedAt: t0},
		{ID: "b", Date: "2025-01-01", CreatedAt: t0.Add(time.Minute)},
		{ID: "z", Date: "2025-01-01", CreatedAt: t0},
		{ID: "a", Date: "2025-01-01", CreatedAt: t0.Add(time.Minute)},
	}

	SortEvents(events)

	want := []string{"z", "a", "b", "late"}
	for i, id := range want {
		if events[i].ID != id {
			t.Fatalf("position %d = %s, want %s", i, events[i].ID, id)
		}
	}
}

func TestSortGoals(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	goals := []core.Goal{
		{ID: "y", CreatedAt: t0},
		{ID: "old", CreatedAt: t0.Add(-time.Hour)},
		{ID: "x", CreatedAt: t0},
	}

	SortGoals(goals)

	if goals[0].ID != "old" || goals[1].ID != "x" || goals[2].ID != "y" {
		t.Fatalf("order = %s %s %s", goals[0].ID, goals[1].ID, goals[2].ID)
	}
}
