package firestore

import (
	"testing"
	"time"

	"budgetcal/internal/core"
)

func TestEventFromData(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name  string
		data  map[string]any
		cents int64
	}{
		{name: "exact cents win", data: map[string]any{"amountCents": int64(-120050), "amount": -1200.5}, cents: -120050},
		{name: "float amount", data: map[string]any{"amount": -1200.5}, cents: -120050},
		{name: "integer amount", data: map[string]any{"amount": int64(25)}, cents: 2500},
		{name: "string amount", data: map[string]any{"amount": "12,34"}, cents: 1234},
		{name: "garbage amount", data: map[string]any{"amount": "n/a"}, cents: 0},
		{name: "missing amount", data: map[string]any{}, cents: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.data["uid"] = "u1"
			tt.data["date"] = "2025-01-01"
			tt.data["recurring"] = "monthly"
			tt.data["createdAt"] = created
			e := eventFromData("ev1", tt.data)
			if e.Amount.Cents != tt.cents {
				t.Errorf("amount = %d, want %d", e.Amount.Cents, tt.cents)
			}
			if e.ID != "ev1" || e.UserID != "u1" || e.Recurring != core.Monthly || !e.CreatedAt.Equal(created) {
				t.Errorf("unexpected event %+v", e)
			}
		})
	}
}

func TestEventDocRoundTrip(t *testing.T) {
	e := core.Event{UserID: "u", Title: "Rent", Date: "2025-01-01", Amount: core.Money{Cents: -120000},
		Type: core.TypeExpense, Recurring: core.Monthly, RecurringEnds: "2025-12-01"}
	doc := toEventDoc(e)
	if doc.Amount != -1200 || doc.AmountCents != -120000 {
		t.Fatalf("unexpected doc amounts %v/%d", doc.Amount, doc.AmountCents)
	}
	back := eventFromData("id", map[string]any{
		"uid": doc.UID, "title": doc.Title, "date": doc.Date, "amount": doc.Amount, "amountCents": doc.AmountCents,
		"type": doc.Type, "recurring": doc.Recurring, "recurringEnds": doc.RecurringEnds,
	})
	back.ID = ""
	if back != e {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, e)
	}
}

func TestGoalFromData(t *testing.T) {
	g := goalFromData("u", "g1", map[string]any{"name": "Trip", "target": 1500.0, "category": "Savings"})
	if g.Target.Cents != 150000 || g.UserID != "u" || g.ID != "g1" || g.Category != "Savings" {
		t.Fatalf("unexpected goal %+v", g)
	}
}
