package cashflow

import "budgetcal/internal/core"

// ChartSeries lays a historical and a forecast segment over one shared date
// axis. Running is nil on forecast dates; Projected is nil on historical
// dates except the last one, which repeats the final running balance so the
// dashed line starts where the solid one ends.
type ChartSeries struct {
	Labels    []string      `json:"labels"`
	Running   []*core.Money `json:"running"`
	Projected []*core.Money `json:"projected"`
}

// Chart builds the chart series for a projection.
func (p Projection) Chart() ChartSeries {
	return BuildChart(p.Balances, p.Forecast)
}

func BuildChart(history, forecast []core.BalancePoint) ChartSeries {
	n := len(history) + len(forecast)
	c := ChartSeries{
		Labels:    make([]string, 0, n),
		Running:   make([]*core.Money, 0, n),
		Projected: make([]*core.Money, 0, n),
	}
	for i := range history {
		c.Labels = append(c.Labels, history[i].Date.String())
		c.Running = append(c.Running, &history[i].Balance)
		var handoff *core.Money
		if i == len(history)-1 && len(forecast) > 0 {
			handoff = &history[i].Balance
		}
		c.Projected = append(c.Projected, handoff)
	}
	for i := range forecast {
		c.Labels = append(c.Labels, forecast[i].Date.String())
		c.Running = append(c.Running, nil)
		c.Projected = append(c.Projected, &forecast[i].Balance)
	}
	return c
}
