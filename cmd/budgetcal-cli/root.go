package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"budgetcal/internal/config"
	"budgetcal/internal/core"
	"budgetcal/internal/log"
	"budgetcal/internal/services"
	"budgetcal/internal/store/memory"
)

var (
	flagEvents   string
	flagUID      string
	flagSettings string
	flagCurrency string
	flagToday    string
	flagJSON     bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "budgetcal-cli",
	Short:         "Cashflow projections for a budgeting calendar export",
	Long:          "Expand recurring events, project daily balances and forecast them from a JSON export of calendar events.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagEvents, "events", "e", "events.json", "JSON array of calendar events")
	rootCmd.PersistentFlags().StringVarP(&flagUID, "uid", "u", "cli", "User the export belongs to; events without a uid are assigned to it")
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "TOML file with a [settings] table")
	rootCmd.PersistentFlags().StringVarP(&flagCurrency, "currency", "c", "", "ISO currency code for display (overrides settings)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Reference date YYYY-MM-DD (default: today)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log skipped events to stderr")
}

// env is what every command works on: the loaded snapshot behind the
// same services the API uses.
type env struct {
	store       *memory.Store
	settings    core.Settings
	today       core.Date
	projections *services.ProjectionService
}

func loadEnv() (*env, error) {
	level := slog.LevelError
	if flagVerbose {
		level = slog.LevelWarn
	}
	logger := log.New(log.Config{
		Level:     level,
		Component: "cli",
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	})

	settings := core.DefaultSettings()
	if flagSettings != "" {
		s, err := config.LoadSettingsDefaults(flagSettings)
		if err != nil {
			return nil, err
		}
		settings = s
	}
	if flagCurrency != "" {
		settings.Currency = strings.ToUpper(flagCurrency)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(flagEvents); err != nil {
		return nil, fmt.Errorf("events file: %w", err)
	}
	st, err := memory.NewFromFile(flagEvents, flagUID)
	if err != nil {
		return nil, err
	}

	today := core.Today()
	if flagToday != "" {
		if today, err = core.ParseDate(flagToday); err != nil {
			return nil, fmt.Errorf("--today: %w", err)
		}
	}

	projections := services.NewProjectionService(st, nil, settings, logger)
	projections.SetClock(func() time.Time { return today.Time })
	return &env{store: st, settings: settings, today: today, projections: projections}, nil
}

func parseDateFlag(name, value string, def core.Date) (core.Date, error) {
	if value == "" {
		return def, nil
	}
	d, err := core.ParseDate(value)
	if err != nil {
		return core.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func parseMoneyFlag(name, value string) (core.Money, error) {
	if value == "" {
		return core.Zero, nil
	}
	m, err := core.ParseMoney(value)
	if err != nil {
		return core.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return m, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
