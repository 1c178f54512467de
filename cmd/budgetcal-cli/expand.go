package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budgetcal/internal/cashflow"
	"budgetcal/internal/cli"
	"budgetcal/internal/core"
)

var (
	flagFrom string
	flagTo   string
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "List dated occurrences of every event, recurring ones repeated",
	RunE:  runExpand,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Income and expense totals of events dated in a period",
	RunE:  runSummary,
}

func init() {
	expandCmd.Flags().StringVar(&flagFrom, "from", "", "First day (default: today)")
	expandCmd.Flags().StringVar(&flagTo, "to", "", "Last day (default: twelve months after --from)")
	summaryCmd.Flags().StringVar(&flagFrom, "from", "", "First day (default: first of the current month)")
	summaryCmd.Flags().StringVar(&flagTo, "to", "", "Last day (default: end of the current month)")
	rootCmd.AddCommand(expandCmd, summaryCmd)
}

func runExpand(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	from, err := parseDateFlag("from", flagFrom, e.today)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", flagTo, from.AddMonthsClamped(cashflow.DefaultPreviewMonths))
	if err != nil {
		return err
	}

	exp, err := e.projections.Occurrences(context.Background(), flagUID, from, to)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, exp.Occurrences)
	}
	renderOccurrences(out, exp.Occurrences, from, to, e.settings.Currency)
	return nil
}

func renderOccurrences(w io.Writer, occs []core.Occurrence, from, to core.Date, currency string) {
	rows := make([][]string, 0, len(occs))
	for _, o := range occs {
		rule := ""
		if o.Recurring.IsRecurring() {
			rule = string(o.Recurring)
		}
		rows = append(rows, []string{o.On.String(), o.Title, o.Category, rule, cli.Amount(o.Amount, currency)})
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Occurrences %s to %s (%d)", from, to, len(occs)),
		Headers: []string{"Date", "Title", "Category", "Repeats", "Amount"},
		Rows:    rows,
	}))
	fmt.Fprintln(w)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	first, last := e.projections.CurrentMonth()
	from, err := parseDateFlag("from", flagFrom, first)
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", flagTo, last)
	if err != nil {
		return err
	}

	sum, err := e.projections.Summary(context.Background(), flagUID, from, to)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, map[string]any{"from": from, "to": to, "income": sum.Income, "expense": sum.Expense, "net": sum.Net()})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Summary %s to %s", from, to),
		Headers: []string{"Income", "Expense", "Net"},
		Rows: [][]string{{
			cli.Amount(sum.Income, e.settings.Currency),
			cli.Amount(sum.Expense.Neg(), e.settings.Currency),
			cli.Amount(sum.Net(), e.settings.Currency),
		}},
	}))
	fmt.Fprintln(out)
	return nil
}
