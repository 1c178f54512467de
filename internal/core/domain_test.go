package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-01-01", "2025-01-01", true},
		{" 2025-12-31 ", "2025-12-31", true},
		{"2025-03-09T10:00:00Z", "2025-03-09", true},
		{"2025-03-09T23:30:00-05:00", "2025-03-09", true},
		{"", "", false},
		{"01/02/2025", "", false},
		{"2025-02-30", "", false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
			}
		} else if !errors.Is(err, ErrMalformedDate) {
			t.Fatalf("%q expected ErrMalformedDate, got %v", tc.in, err)
		}
	}
}

func TestDateAddMonthsClamped(t *testing.T) {
	cases := []struct {
		from string
		n    int
		want string
	}{
		{"2025-01-31", 1, "2025-02-28"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2025-01-31", 2, "2025-03-31"},
		{"2025-01-31", 3, "2025-04-30"},
		{"2025-12-15", 1, "2026-01-15"},
		{"2025-01-15", -1, "2024-12-15"},
		{"2025-03-31", -13, "2024-02-29"},
	}
	for _, tc := range cases {
		got := MustParseDate(tc.from).AddMonthsClamped(tc.n)
		if got.String() != tc.want {
			t.Errorf("%s + %d months = %s, want %s", tc.from, tc.n, got, tc.want)
		}
	}
}

func TestDateDaysUntil(t *testing.T) {
	a := NewDate(2025, time.January, 1)
	b := NewDate(2025, time.March, 1)
	if got := a.DaysUntil(b); got != 59 {
		t.Fatalf("expected 59 days, got %d", got)
	}
	if got := b.DaysUntil(a); got != -59 {
		t.Fatalf("expected -59 days, got %d", got)
	}
	if got := a.AddDays(59); !got.Equal(b) {
		t.Fatalf("expected %s, got %s", b, got)
	}

	// a Gregorian 400-year cycle, far beyond what time.Duration can hold
	from, to := NewDate(1700, time.January, 1), NewDate(2100, time.January, 1)
	if got := from.DaysUntil(to); got != 146097 {
		t.Fatalf("expected 146097 days, got %d", got)
	}
	if got := to.DaysUntil(from); got != -146097 {
		t.Fatalf("expected -146097 days, got %d", got)
	}
	if got := NewDate(1, time.January, 1).DaysUntil(NewDate(9999, time.December, 31)); got != 3652058 {
		t.Fatalf("expected 3652058 days, got %d", got)
	}
}

func TestDateJSON(t *testing.T) {
	out, err := json.Marshal(NewDate(2025, time.May, 4))
	if err != nil || string(out) != `"2025-05-04"` {
		t.Fatalf("unexpected marshal %s (err=%v)", out, err)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2025-05-04"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.Equal(NewDate(2025, time.May, 4)) {
		t.Fatalf("unexpected date %s", d)
	}
}

func TestRecurrenceNormalize(t *testing.T) {
	cases := []struct {
		in   Recurrence
		want Recurrence
		ok   bool
	}{
		{"", None, true},
		{"none", None, true},
		{"Weekly", Weekly, true},
		{" biweekly ", Biweekly, true},
		{"monthly", Monthly, true},
		{"yearly", None, false},
	}
	for _, tc := range cases {
		got, ok := tc.in.Normalize()
		if got != tc.want || ok != tc.ok {
			t.Errorf("Normalize(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEventApplyDefaults(t *testing.T) {
	job := Event{Date: "2025-01-10", Type: TypeIncome, Category: "Job", Hours: 10, Rate: 15.5}.ApplyDefaults()
	if job.Amount.Cents != 15500 || job.Title != "Income" {
		t.Fatalf("unexpected job income %+v", job)
	}

	rent := Event{Date: "2025-01-01", Type: TypeExpense, Amount: Money{Cents: 120000}, Recurring: "Monthly"}.ApplyDefaults()
	if rent.Amount.Cents != -120000 || rent.Recurring != Monthly || rent.Title != "Expense" {
		t.Fatalf("unexpected rent %+v", rent)
	}

	untyped := Event{Date: "2025-01-01", Amount: Money{Cents: -500}}.ApplyDefaults()
	if untyped.Type != TypeExpense {
		t.Fatalf("expected type derived from sign, got %q", untyped.Type)
	}
}

func TestEventValidate(t *testing.T) {
	good := Event{Date: "2025-01-01", Amount: Money{Cents: -100}, Recurring: Monthly, RecurringEnds: "2025-06-01"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Event{
		{Date: "not-a-date"},
		{Date: "2025-01-01", Recurring: "yearly"},
		{Date: "2025-01-01", Type: "transfer"},
		{Date: "2025-01-01", Recurring: Weekly, RecurringEnds: "2024-12-31"},
		{Date: "2025-01-01", RecurringEnds: "soon"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestEventTypeConflict(t *testing.T) {
	if !(Event{Type: TypeIncome, Amount: Money{Cents: -1}}).TypeConflict() {
		t.Fatal("expected conflict for negative income")
	}
	if (Event{Type: TypeExpense, Amount: Money{Cents: -1}}).TypeConflict() {
		t.Fatal("unexpected conflict")
	}
	if (Event{Amount: Money{Cents: -1}}).TypeConflict() {
		t.Fatal("untyped events never conflict")
	}
}

func TestSettingsMergeAndValidate(t *testing.T) {
	s := DefaultSettings().Merge(Settings{ForecastDays: 90})
	if s.Currency != "EUR" || s.ForecastDays != 90 || s.Theme != "light" {
		t.Fatalf("unexpected merge result %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid settings, got %v", err)
	}
	if err := (Settings{Currency: "eur", ForecastDays: 0, Theme: "neon"}).Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGoalValidate(t *testing.T) {
	if err := (Goal{Name: "Holiday", Target: Money{Cents: 100000}}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Goal{Name: " "}).Validate(); !errors.Is(err, ErrEmptyGoalName) {
		t.Fatalf("expected ErrEmptyGoalName, got %v", err)
	}
	if err := (Goal{Name: "x", Target: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrNegativeTarget) {
		t.Fatalf("expected ErrNegativeTarget, got %v", err)
	}
}
