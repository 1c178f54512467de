package cashflow

import (
	"errors"
	"testing"

	"budgetcal/internal/core"
)

func TestStepperFor(t *testing.T) {
	anchor := core.MustParseDate("2025-01-31")

	tests := []struct {
		name string
		rule core.Recurrence
		n    int
		want string
	}{
		{name: "weekly anchor", rule: core.Weekly, n: 0, want: "2025-01-31"},
		{name: "weekly third", rule: core.Weekly, n: 3, want: "2025-02-21"},
		{name: "biweekly second", rule: core.Biweekly, n: 2, want: "2025-02-28"},
		{name: "monthly clamps february", rule: core.Monthly, n: 1, want: "2025-02-28"},
		{name: "monthly returns to 31st", rule: core.Monthly, n: 2, want: "2025-03-31"},
		{name: "monthly clamps april", rule: core.Monthly, n: 3, want: "2025-04-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StepperFor(tt.rule)
			if err != nil {
				t.Fatalf("StepperFor(%q) error: %v", tt.rule, err)
			}
			if got := s.Nth(anchor, tt.n).String(); got != tt.want {
				t.Errorf("Nth(%d) = %s, want %s", tt.n, got, tt.want)
			}
		})
	}
}

func TestStepperFor_Unknown(t *testing.T) {
	for _, rule := range []core.Recurrence{core.None, "yearly"} {
		if _, err := StepperFor(rule); !errors.Is(err, core.ErrUnknownRecurrence) {
			t.Errorf("StepperFor(%q) error = %v, want ErrUnknownRecurrence", rule, err)
		}
	}
}
