package cashflow

import (
	"errors"
	"testing"

	"budgetcal/internal/core"
)

func series(start string, cs ...int64) []core.BalancePoint {
	out := make([]core.BalancePoint, len(cs))
	for i, c := range cs {
		out[i] = core.BalancePoint{Date: d(start).AddDays(i), Balance: cents(c)}
	}
	return out
}

func TestForecast(t *testing.T) {
	tests := []struct {
		name     string
		history  []core.BalancePoint
		horizon  int
		lookback int
		want     []int64
	}{
		{
			name:    "two points rising",
			history: series("2025-01-01", 10000, 20000),
			horizon: 3,
			want:    []int64{30000, 40000, 50000},
		},
		{
			name:    "single point is flat",
			history: series("2025-01-01", 4200),
			horizon: 2,
			want:    []int64{4200, 4200},
		},
		{
			name:     "lookback of one is flat",
			history:  series("2025-01-01", 0, 100, 200),
			horizon:  2,
			lookback: 1,
			want:     []int64{200, 200},
		},
		{
			name:     "lookback trims older history",
			history:  series("2025-01-01", -50000, 0, 100, 200),
			horizon:  2,
			lookback: 3,
			want:     []int64{300, 400},
		},
		{
			name:    "slope spans the whole window",
			history: series("2025-01-01", 0, 0, 100),
			horizon: 4,
			want:    []int64{150, 200, 250, 300},
		},
		{
			name:    "thirds round per point",
			history: series("2025-01-01", 0, 0, 0, -100),
			horizon: 3,
			// slope -33.33...: -33.33, -66.67, -100
			want: []int64{-133, -167, -200},
		},
		{
			name:    "zero horizon",
			history: series("2025-01-01", 1, 2),
			horizon: 0,
			want:    []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Forecast(tt.history, ForecastParams{HorizonDays: tt.horizon, LookbackDays: tt.lookback})
			if err != nil {
				t.Fatalf("Forecast() error: %v", err)
			}
			if !equalInts(balances(got), tt.want) {
				t.Fatalf("Forecast() = %v, want %v", balances(got), tt.want)
			}
			for _, p := range got {
				if !p.Projected {
					t.Fatalf("point %s not tagged projected", p.Date)
				}
			}
		})
	}
}

func TestForecast_Continuity(t *testing.T) {
	history := series("2025-02-20", 1, 2, 3, 4, 5, 6, 7, 8, 9)
	got, err := Forecast(history, ForecastParams{HorizonDays: 45})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}
	if len(got) != 45 {
		t.Fatalf("len = %d, want 45", len(got))
	}
	last := history[len(history)-1].Date
	if last.DaysUntil(got[0].Date) != 1 {
		t.Fatalf("first forecast date %s does not follow %s", got[0].Date, last)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Date.DaysUntil(got[i].Date) != 1 {
			t.Fatalf("forecast dates not consecutive at %d", i)
		}
	}
}

func TestForecast_EmptyHistory(t *testing.T) {
	today := d("2025-06-15")
	got, err := Forecast(nil, ForecastParams{HorizonDays: 3, Today: today})
	if err != nil {
		t.Fatalf("Forecast() error: %v", err)
	}
	if want := []int64{0, 0, 0}; !equalInts(balances(got), want) {
		t.Fatalf("Forecast() = %v, want %v", balances(got), want)
	}
	if got[0].Date.String() != "2025-06-16" {
		t.Fatalf("first date = %s, want 2025-06-16", got[0].Date)
	}
}

func TestForecast_InvalidParams(t *testing.T) {
	if _, err := Forecast(nil, ForecastParams{HorizonDays: -1}); !errors.Is(err, ErrInvalidHorizon) {
		t.Errorf("negative horizon error = %v", err)
	}
	if _, err := Forecast(nil, ForecastParams{LookbackDays: -1}); !errors.Is(err, ErrInvalidLookback) {
		t.Errorf("negative lookback error = %v", err)
	}
	if _, err := Forecast(nil, ForecastParams{HorizonDays: 2_000_000_000}); !errors.Is(err, ErrInvalidHorizon) {
		t.Errorf("oversized horizon error = %v", err)
	}
}

func TestAverageDailyDelta(t *testing.T) {
	got := AverageDailyDelta(series("2025-01-01", 0, 100, 200, 300), 30)
	if got.String() != "1" {
		t.Fatalf("AverageDailyDelta() = %s, want 1", got)
	}
	if got := AverageDailyDelta(nil, 30); !got.IsZero() {
		t.Fatalf("AverageDailyDelta(nil) = %s, want 0", got)
	}
}
