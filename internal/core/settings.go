package core

import (
	"fmt"
	"strings"
)

const (
	DefaultCurrency     = "EUR"
	DefaultForecastDays = 60
	DefaultTheme        = "light"
	MaxForecastDays     = 3650
)

// Settings is the per-user preferences document.
type Settings struct {
	Currency     string `json:"currency" toml:"currency"`
	ForecastDays int    `json:"forecastDays" toml:"forecast_days"`
	Theme        string `json:"theme" toml:"theme"`
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings() Settings {
	return Settings{
		Currency:     DefaultCurrency,
		ForecastDays: DefaultForecastDays,
		Theme:        DefaultTheme,
	}
}

// Merge overlays the non-zero fields of o on s.
func (s Settings) Merge(o Settings) Settings {
	if o.Currency != "" {
		s.Currency = o.Currency
	}
	if o.ForecastDays != 0 {
		s.ForecastDays = o.ForecastDays
	}
	if o.Theme != "" {
		s.Theme = o.Theme
	}
	return s
}

func (s Settings) Validate() error {
	var problems []string
	if len(s.Currency) != 3 || strings.ToUpper(s.Currency) != s.Currency {
		problems = append(problems, fmt.Sprintf("invalid currency %q: must be a 3-letter ISO code", s.Currency))
	}
	if s.ForecastDays < 1 || s.ForecastDays > MaxForecastDays {
		problems = append(problems, fmt.Sprintf("invalid forecast days %d: must be between 1 and %d", s.ForecastDays, MaxForecastDays))
	}
	switch s.Theme {
	case "light", "dark", "system":
	default:
		problems = append(problems, fmt.Sprintf("invalid theme %q: must be light, dark or system", s.Theme))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}
	return nil
}
