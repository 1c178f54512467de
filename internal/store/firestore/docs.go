package firestore

import (
	"fmt"
	"time"

	"budgetcal/internal/core"
)

// eventDoc is the stored shape of an event. Amount stays a plain number for
// the web client; amountCents is the exact value this service reads first.
type eventDoc struct {
	UID           string    `firestore:"uid"`
	Title         string    `firestore:"title"`
	Date          string    `firestore:"date"`
	Amount        float64   `firestore:"amount"`
	AmountCents   int64     `firestore:"amountCents"`
	Type          string    `firestore:"type,omitempty"`
	Category      string    `firestore:"category,omitempty"`
	Recurring     string    `firestore:"recurring,omitempty"`
	RecurringEnds string    `firestore:"recurringEnds,omitempty"`
	Hours         float64   `firestore:"hours,omitempty"`
	Rate          float64   `firestore:"rate,omitempty"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

type goalDoc struct {
	Name        string    `firestore:"name"`
	Target      float64   `firestore:"target"`
	TargetCents int64     `firestore:"targetCents"`
	StartDate   string    `firestore:"startDate,omitempty"`
	Deadline    string    `firestore:"deadline,omitempty"`
	Category    string    `firestore:"category,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt"`
}

func toEventDoc(e core.Event) eventDoc {
	return eventDoc{
		UID:           e.UserID,
		Title:         e.Title,
		Date:          e.Date,
		Amount:        e.Amount.Float64(),
		AmountCents:   e.Amount.Cents,
		Type:          string(e.Type),
		Category:      e.Category,
		Recurring:     string(e.Recurring),
		RecurringEnds: e.RecurringEnds,
		Hours:         e.Hours,
		Rate:          e.Rate,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toGoalDoc(g core.Goal) goalDoc {
	return goalDoc{
		Name:        g.Name,
		Target:      g.Target.Float64(),
		TargetCents: g.Target.Cents,
		StartDate:   g.StartDate,
		Deadline:    g.Deadline,
		Category:    g.Category,
		CreatedAt:   g.CreatedAt,
	}
}

// Documents written by the web client are loosely typed: amounts may be
// missing, strings or floats, so they are decoded field by field.

func eventFromData(id string, m map[string]any) core.Event {
	return core.Event{
		ID:            id,
		UserID:        str(m, "uid"),
		Title:         str(m, "title"),
		Date:          str(m, "date"),
		Amount:        money(m, "amountCents", "amount"),
		Type:          core.EventType(str(m, "type")),
		Category:      str(m, "category"),
		Recurring:     core.Recurrence(str(m, "recurring")),
		RecurringEnds: str(m, "recurringEnds"),
		Hours:         float(m, "hours"),
		Rate:          float(m, "rate"),
		CreatedAt:     timestamp(m, "createdAt"),
		UpdatedAt:     timestamp(m, "updatedAt"),
	}
}

func goalFromData(userID, id string, m map[string]any) core.Goal {
	return core.Goal{
		ID:        id,
		UserID:    userID,
		Name:      str(m, "name"),
		Target:    money(m, "targetCents", "target"),
		StartDate: str(m, "startDate"),
		Deadline:  str(m, "deadline"),
		Category:  str(m, "category"),
		CreatedAt: timestamp(m, "createdAt"),
	}
}

func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func float(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func integer(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// money prefers the exact cents field and falls back to the decimal amount.
// Anything non-numeric reads as zero.
func money(m map[string]any, centsKey, amountKey string) core.Money {
	if c, ok := m[centsKey].(int64); ok {
		return core.Money{Cents: c}
	}
	switch v := m[amountKey].(type) {
	case float64:
		return core.MoneyFromFloat(v)
	case int64:
		return core.Money{Cents: v * 100}
	case string:
		if parsed, err := core.ParseMoney(v); err == nil {
			return parsed
		}
	}
	return core.Zero
}

func timestamp(m map[string]any, key string) time.Time {
	if t, ok := m[key].(time.Time); ok {
		return t
	}
	return time.Time{}
}
