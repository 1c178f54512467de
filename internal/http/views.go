package http

import (
	"budgetcal/internal/cashflow"
	"budgetcal/internal/core"
)

// amountView carries an amount both as a number and formatted in the
// user's currency.
type amountView struct {
	Amount    core.Money `json:"amount"`
	Formatted string     `json:"formatted"`
}

func newAmount(m core.Money, currency string) amountView {
	return amountView{Amount: m, Formatted: core.FormatMoney(m, currency)}
}

type balanceView struct {
	Date      core.Date  `json:"date"`
	Balance   core.Money `json:"balance"`
	Formatted string     `json:"formatted"`
	Projected bool       `json:"projected"`
}

func newBalances(points []core.BalancePoint, currency string) []balanceView {
	out := make([]balanceView, len(points))
	for i, p := range points {
		out[i] = balanceView{
			Date:      p.Date,
			Balance:   p.Balance,
			Formatted: core.FormatMoney(p.Balance, currency),
			Projected: p.Projected,
		}
	}
	return out
}

type summaryView struct {
	From    core.Date  `json:"from"`
	To      core.Date  `json:"to"`
	Income  amountView `json:"income"`
	Expense amountView `json:"expense"`
	Net     amountView `json:"net"`
}

func newSummary(s core.PeriodSummary, from, to core.Date, currency string) summaryView {
	return summaryView{
		From:    from,
		To:      to,
		Income:  newAmount(s.Income, currency),
		Expense: newAmount(s.Expense, currency),
		Net:     newAmount(s.Net(), currency),
	}
}

type occurrenceView struct {
	core.Occurrence
	Formatted string `json:"formatted"`
}

func newOccurrences(occs []core.Occurrence, currency string) []occurrenceView {
	out := make([]occurrenceView, len(occs))
	for i, o := range occs {
		out[i] = occurrenceView{Occurrence: o, Formatted: core.FormatMoney(o.Amount, currency)}
	}
	return out
}

type projectionView struct {
	Today       core.Date             `json:"today"`
	Currency    string                `json:"currency"`
	Opening     amountView            `json:"opening"`
	Balances    []balanceView         `json:"balances"`
	Forecast    []balanceView         `json:"forecast"`
	Risk        []balanceView         `json:"risk"`
	Summary     summaryView           `json:"summary"`
	Occurrences []occurrenceView      `json:"occurrences,omitempty"`
	Chart       *cashflow.ChartSeries `json:"chart,omitempty"`
	Warnings    int                   `json:"warnings"`
	Cached      bool                  `json:"cached"`
}

type riskView struct {
	Threshold amountView    `json:"threshold"`
	AtRisk    bool          `json:"atRisk"`
	First     *balanceView  `json:"first,omitempty"`
	Days      []balanceView `json:"days"`
}

type goalProgressView struct {
	core.GoalProgress
	SavedFormatted  string `json:"savedFormatted"`
	TargetFormatted string `json:"targetFormatted"`
}
