package cashflow

import (
	"fmt"

	"budgetcal/internal/core"
)

const (
	DefaultHistoryDays   = 60
	DefaultPreviewMonths = 12

	// MaxHorizonDays bounds every day count a projection walks: history,
	// forecast and lookback.
	MaxHorizonDays   = core.MaxForecastDays
	MaxPreviewMonths = 120
)

// ProjectionParams drives a full projection. Zero values take the defaults.
type ProjectionParams struct {
	Today          core.Date
	HistoryDays    int
	ForecastDays   int
	LookbackDays   int
	PreviewMonths  int
	OpeningBalance core.Money
	RiskThreshold  core.Money
	// CarryPast folds every occurrence dated before Today into the opening
	// balance instead of dropping it.
	CarryPast bool
}

func (p ProjectionParams) withDefaults() ProjectionParams {
	if p.HistoryDays == 0 {
		p.HistoryDays = DefaultHistoryDays
	}
	if p.ForecastDays == 0 {
		p.ForecastDays = core.DefaultForecastDays
	}
	if p.LookbackDays == 0 {
		p.LookbackDays = DefaultLookbackDays
	}
	if p.PreviewMonths == 0 {
		p.PreviewMonths = DefaultPreviewMonths
	}
	return p
}

// Projection is everything the dashboard renders from one event snapshot.
type Projection struct {
	Today       core.Date           `json:"today"`
	Occurrences []core.Occurrence   `json:"occurrences"`
	Balances    []core.BalancePoint `json:"balances"`
	Forecast    []core.BalancePoint `json:"forecast"`
	Risk        []core.BalancePoint `json:"risk"`
	Summary     core.PeriodSummary  `json:"summary"`
	Opening     core.Money          `json:"opening"`
	Warnings    []Warning           `json:"-"`
}

// Project runs the whole pipeline: display expansion from Today, a dense
// balance window of HistoryDays starting at Today, a linear forecast after
// it, risk days across both segments and the summary of Today's month.
func Project(events []core.Event, p ProjectionParams) (Projection, error) {
	if p.Today.IsZero() {
		return Projection{}, ErrMissingToday
	}
	if p.HistoryDays < 0 || p.HistoryDays > MaxHorizonDays ||
		p.ForecastDays < 0 || p.ForecastDays > MaxHorizonDays ||
		p.PreviewMonths < 0 || p.PreviewMonths > MaxPreviewMonths {
		return Projection{}, fmt.Errorf("%w: history=%d forecast=%d preview=%d",
			ErrInvalidHorizon, p.HistoryDays, p.ForecastDays, p.PreviewMonths)
	}
	if p.LookbackDays < 0 || p.LookbackDays > MaxHorizonDays {
		return Projection{}, fmt.Errorf("%w: %d (0..%d)", ErrInvalidLookback, p.LookbackDays, MaxHorizonDays)
	}
	p = p.withDefaults()

	out := Projection{Today: p.Today}

	display, err := Expand(events, p.Today, p.Today.AddMonthsClamped(p.PreviewMonths))
	if err != nil {
		return Projection{}, err
	}
	out.Occurrences = display.Occurrences

	end := p.Today.AddDays(p.HistoryDays - 1)
	all := ExpandAll(events, end)
	out.Warnings = all.Warnings

	out.Opening = p.OpeningBalance
	if p.CarryPast {
		out.Opening = out.Opening.Add(NetBefore(all.Occurrences, p.Today))
	}

	out.Balances, err = Aggregate(all.Occurrences, p.Today, end, out.Opening)
	if err != nil {
		return Projection{}, err
	}
	out.Forecast, err = Forecast(out.Balances, ForecastParams{
		HorizonDays:  p.ForecastDays,
		LookbackDays: p.LookbackDays,
		Today:        p.Today,
	})
	if err != nil {
		return Projection{}, err
	}

	series := make([]core.BalancePoint, 0, len(out.Balances)+len(out.Forecast))
	series = append(series, out.Balances...)
	series = append(series, out.Forecast...)
	out.Risk = DetectRisk(series, p.RiskThreshold)
	out.Summary = SummarizeMonth(events, p.Today.Year(), p.Today.Month())
	return out, nil
}

// NetBefore sums the occurrences dated strictly before day.
func NetBefore(occs []core.Occurrence, day core.Date) core.Money {
	var net core.Money
	for _, o := range occs {
		if o.On.Before(day) {
			net = net.Add(o.Amount)
		}
	}
	return net
}
