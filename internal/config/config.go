package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Toggl    TogglConfig    `toml:"toggl"`
	Workweek WorkweekConfig `toml:"workweek"`
	Watch    WatchConfig    `toml:"watch"`
	Calendar CalendarConfig `toml:"calendar"`
}

type TogglConfig struct {
	APIKey      string `toml:"api_key"`
	WorkspaceID string `toml:"workspace_id"`
	BaseURL     string `toml:"base_url"`
}

type WorkweekConfig struct {
	WeekdayHours float64 `toml:"weekday_hours"`
	FridayHours  float64 `toml:"friday_hours"`
	HalfDayHours float64 `toml:"half_day_hours"`
}

type WatchConfig struct {
	IntervalMinutes      int     `toml:"interval_minutes"`
	Notify               bool    `toml:"notify"`
	NotifyThresholdHours float64 `toml:"notify_threshold_hours"`
}

type CalendarConfig struct {
	// Source is a URL or file path of an iCalendar feed whose events are
	// treated as holidays by `balancr holiday import`.
	Source string `toml:"source"`
}

func DefaultConfig() Config {
	return Config{
		Workweek: WorkweekConfig{
			WeekdayHours: 9,
			FridayHours:  8,
			HalfDayHours: 5,
		},
		Watch: WatchConfig{
			IntervalMinutes:      30,
			Notify:               true,
			NotifyThresholdHours: 1,
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "balancr"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TOGGL_API_KEY"); v != "" {
		cfg.Toggl.APIKey = v
	}
	if v := os.Getenv("TOGGL_WORKSPACE_ID"); v != "" {
		cfg.Toggl.WorkspaceID = v
	}
	if v := os.Getenv("TOGGL_BASE_URL"); v != "" {
		cfg.Toggl.BaseURL = v
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
