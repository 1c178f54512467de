package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budgetcal/internal/cli"
	"budgetcal/internal/core"
	"budgetcal/internal/services"
)

var flagGoals string

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Progress of savings goals against the recorded events",
	RunE:  runGoals,
}

func init() {
	goalsCmd.Flags().StringVarP(&flagGoals, "goals", "g", "goals.json", "JSON array of savings goals")
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(flagGoals)
	if err != nil {
		return fmt.Errorf("read goals file: %w", err)
	}
	var goals []core.Goal
	if err := json.Unmarshal(raw, &goals); err != nil {
		return fmt.Errorf("decode goals file: %w", err)
	}

	ctx := context.Background()
	svc := services.NewGoalService(e.store, e.store, nil)
	for _, g := range goals {
		if _, err := svc.Create(ctx, flagUID, g); err != nil {
			return fmt.Errorf("goal %q: %w", g.Name, err)
		}
	}
	progress, err := svc.Progress(ctx, flagUID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, progress)
	}

	cur := e.settings.Currency
	rows := make([][]string, 0, len(progress))
	for _, p := range progress {
		rows = append(rows, []string{
			p.Name,
			cli.Amount(p.Saved, cur),
			core.FormatMoney(p.Target, cur),
			cli.Bar(core.Money{Cents: int64(p.Percent)}, core.Money{Cents: 100}, 20),
			fmt.Sprintf("%d%%", p.Percent),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Savings Goals",
		Headers: []string{"Goal", "Saved", "Target", "", "Progress"},
		Rows:    rows,
	}))
	fmt.Fprintln(out)
	return nil
}
