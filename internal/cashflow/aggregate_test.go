package cashflow

import (
	"errors"
	"testing"

	"budgetcal/internal/core"
)

func occ(date string, c int64) core.Occurrence {
	return core.Occurrence{Event: core.Event{Date: date, Amount: cents(c)}, On: d(date)}
}

func balances(points []core.BalancePoint) []int64 {
	out := make([]int64, len(points))
	for i, p := range points {
		out[i] = p.Balance.Cents
	}
	return out
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAggregate_SingleDeposit(t *testing.T) {
	got, err := Aggregate([]core.Occurrence{occ("2025-01-03", 100000)}, d("2025-01-01"), d("2025-01-05"), core.Zero)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	want := []int64{0, 0, 100000, 100000, 100000}
	if !equalInts(balances(got), want) {
		t.Fatalf("Aggregate() = %v, want %v", balances(got), want)
	}
}

func TestAggregate_Density(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		days  int
	}{
		{name: "single day", start: "2025-01-01", end: "2025-01-01", days: 1},
		{name: "leap february", start: "2024-02-01", end: "2024-03-01", days: 30},
		{name: "year boundary", start: "2024-12-15", end: "2025-01-15", days: 32},
		{name: "sixty days", start: "2025-03-01", end: "2025-04-29", days: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(nil, d(tt.start), d(tt.end), cents(500))
			if err != nil {
				t.Fatalf("Aggregate() error: %v", err)
			}
			if len(got) != tt.days {
				t.Fatalf("len = %d, want %d", len(got), tt.days)
			}
			if got[0].Date.String() != tt.start || got[len(got)-1].Date.String() != tt.end {
				t.Fatalf("range = %s..%s, want %s..%s", got[0].Date, got[len(got)-1].Date, tt.start, tt.end)
			}
			for i := 1; i < len(got); i++ {
				if got[i-1].Date.DaysUntil(got[i].Date) != 1 {
					t.Fatalf("gap between %s and %s", got[i-1].Date, got[i].Date)
				}
				if got[i].Balance != cents(500) {
					t.Fatalf("quiet day changed balance: %s", got[i].Balance)
				}
			}
		})
	}
}

func TestAggregate_Conservation(t *testing.T) {
	occs := []core.Occurrence{
		occ("2025-01-01", 12345),
		occ("2025-01-01", -2345),
		occ("2025-01-04", -99999),
		occ("2025-01-10", 1),
		occ("2025-01-10", 3),
	}
	opening := cents(-7)
	got, err := Aggregate(occs, d("2025-01-01"), d("2025-01-10"), opening)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	var sum int64
	for _, o := range occs {
		sum += o.Amount.Cents
	}
	final := got[len(got)-1].Balance
	if final.Sub(opening).Cents != sum {
		t.Fatalf("final - opening = %d, want %d", final.Sub(opening).Cents, sum)
	}
	if got[0].Balance.Cents != -7+12345-2345 {
		t.Fatalf("same-day occurrences not summed: %d", got[0].Balance.Cents)
	}
}

func TestAggregate_IgnoresOutOfRange(t *testing.T) {
	occs := []core.Occurrence{occ("2024-12-31", 500), occ("2025-01-02", 100), occ("2025-01-04", 700)}
	got, err := Aggregate(occs, d("2025-01-01"), d("2025-01-03"), core.Zero)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if want := []int64{0, 100, 100}; !equalInts(balances(got), want) {
		t.Fatalf("Aggregate() = %v, want %v", balances(got), want)
	}
}

func TestAggregate_WideRange(t *testing.T) {
	start, end := d("1700-01-01"), d("2100-01-01")
	occs := []core.Occurrence{
		occ("1700-01-01", 100),
		occ("1992-04-12", 200),
		occ("2099-12-31", 300),
		occ("2500-01-01", 999),
	}

	got, err := Aggregate(occs, start, end, core.Zero)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}
	if len(got) != 146098 {
		t.Fatalf("len = %d, want 146098", len(got))
	}
	if last := got[len(got)-1]; !last.Date.Equal(end) || last.Balance.Cents != 600 {
		t.Errorf("last point = %s %d, want %s 600", last.Date, last.Balance.Cents, end)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date.DaysUntil(got[i].Date) != 1 {
			t.Fatalf("gap between %s and %s", got[i-1].Date, got[i].Date)
		}
	}
}

func TestAggregate_InvalidRange(t *testing.T) {
	if _, err := Aggregate(nil, d("2025-01-02"), d("2025-01-01"), core.Zero); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Aggregate() error = %v, want ErrInvalidRange", err)
	}
}

func TestAggregate_ExactCents(t *testing.T) {
	// ten deposits of 0.10 sum to exactly 1.00
	var occs []core.Occurrence
	for i := 0; i < 10; i++ {
		occs = append(occs, occ("2025-01-01", 10))
	}
	got, _ := Aggregate(occs, d("2025-01-01"), d("2025-01-01"), core.Zero)
	if got[0].Balance.String() != "1.00" {
		t.Fatalf("balance = %s, want 1.00", got[0].Balance)
	}
}

func TestDailyNet(t *testing.T) {
	occs := []core.Occurrence{occ("2025-01-01", 100), occ("2025-01-01", -30), occ("2025-01-05", 10), occ("2025-02-01", 99)}
	got := DailyNet(occs, d("2025-01-01"), d("2025-01-31"))
	if len(got) != 2 || got["2025-01-01"] != cents(70) || got["2025-01-05"] != cents(10) {
		t.Fatalf("DailyNet() = %v", got)
	}
}
