package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"budgetcal/internal/core"
)

type settingsFile struct {
	Settings core.Settings `toml:"settings"`
}

// LoadSettingsDefaults reads the [settings] table of a TOML file and overlays
// it on the built-in defaults. An empty path returns the built-in defaults.
//
//	[settings]
//	currency = "EUR"
//	forecast_days = 90
//	theme = "dark"
func LoadSettingsDefaults(path string) (core.Settings, error) {
	defaults := core.DefaultSettings()
	if path == "" {
		return defaults, nil
	}

	var f settingsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return core.Settings{}, fmt.Errorf("decode settings file %s: %w", path, err)
	}

	s := defaults.Merge(f.Settings)
	if err := s.Validate(); err != nil {
		return core.Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}
