package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budgetcal/internal/cashflow"
	"budgetcal/internal/cli"
	"budgetcal/internal/core"
	"budgetcal/internal/services"
)

var (
	flagDays      int
	flagForecast  int
	flagLookback  int
	flagOpening   string
	flagThreshold string
	flagCarry     bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Daily balances from today, a linear forecast and risk days",
	RunE:  runProject,
}

func init() {
	projectCmd.Flags().IntVarP(&flagDays, "days", "n", cashflow.DefaultHistoryDays, "Days of computed balance starting today")
	projectCmd.Flags().IntVarP(&flagForecast, "forecast", "f", 0, "Forecast horizon in days (default: settings)")
	projectCmd.Flags().IntVar(&flagLookback, "lookback", cashflow.DefaultLookbackDays, "Trailing days used for the trend")
	projectCmd.Flags().StringVar(&flagOpening, "opening", "", "Opening balance")
	projectCmd.Flags().StringVar(&flagThreshold, "threshold", "", "Risk threshold")
	projectCmd.Flags().BoolVar(&flagCarry, "carry", false, "Fold events before today into the opening balance")
	rootCmd.AddCommand(projectCmd)
}

func runProject(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	opening, err := parseMoneyFlag("opening", flagOpening)
	if err != nil {
		return err
	}
	threshold, err := parseMoneyFlag("threshold", flagThreshold)
	if err != nil {
		return err
	}

	p, _, err := e.projections.Project(context.Background(), flagUID, services.ProjectionRequest{
		Today:        e.today,
		HistoryDays:  flagDays,
		ForecastDays: flagForecast,
		LookbackDays: flagLookback,
		Opening:      opening,
		Threshold:    threshold,
		CarryPast:    flagCarry,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, p)
	}
	renderProjection(out, p, threshold, e.settings.Currency)
	return nil
}

func renderProjection(w io.Writer, p cashflow.Projection, threshold core.Money, currency string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle("CASHFLOW PROJECTION"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Today %s   Opening %s\n\n", p.Today, cli.Amount(p.Opening, currency))

	series := append(append([]core.BalancePoint{}, p.Balances...), p.Forecast...)
	scale := core.Zero
	for _, b := range series {
		if abs := b.Balance.Abs(); scale.Less(abs) {
			scale = abs
		}
	}

	rows := make([][]string, 0, len(series))
	for _, b := range series {
		kind := ""
		if b.Projected {
			kind = cli.Muted("forecast")
		}
		if b.Balance.Less(threshold) {
			kind = cli.Warn("below threshold")
		}
		rows = append(rows, []string{b.Date.String(), cli.Amount(b.Balance, currency), cli.Bar(b.Balance, scale, 20), kind})
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   "Daily Balance",
		Headers: []string{"Date", "Balance", "", ""},
		Rows:    rows,
	}))
	fmt.Fprintln(w)

	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("%s %d", p.Today.Month(), p.Today.Year()),
		Headers: []string{"Income", "Expense", "Net"},
		Rows: [][]string{{
			cli.Amount(p.Summary.Income, currency),
			cli.Amount(p.Summary.Expense.Neg(), currency),
			cli.Amount(p.Summary.Net(), currency),
		}},
	}))
	fmt.Fprintln(w)

	if first, ok := cashflow.FirstRisk(series, threshold); ok {
		fmt.Fprintf(w, "  %s\n\n", cli.Warn("%d day(s) below %s, first on %s",
			len(p.Risk), core.FormatMoney(threshold, currency), first.Date))
	} else {
		fmt.Fprintf(w, "  %s\n\n", cli.Muted("No days below "+core.FormatMoney(threshold, currency)))
	}
	if n := len(p.Warnings); n > 0 {
		fmt.Fprintf(w, "  %s\n\n", cli.Muted(fmt.Sprintf("%d event(s) skipped, rerun with -v for details", n)))
	}
}
