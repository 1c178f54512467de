package cashflow

import "budgetcal/internal/core"

// DetectRisk returns, in order, the points whose balance is strictly below
// threshold.
func DetectRisk(series []core.BalancePoint, threshold core.Money) []core.BalancePoint {
	var out []core.BalancePoint
	for _, p := range series {
		if p.Balance.Less(threshold) {
			out = append(out, p)
		}
	}
	return out
}

// FirstRisk returns the earliest point below threshold, if any.
func FirstRisk(series []core.BalancePoint, threshold core.Money) (core.BalancePoint, bool) {
	for _, p := range series {
		if p.Balance.Less(threshold) {
			return p, true
		}
	}
	return core.BalancePoint{}, false
}
