package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the optional YAML config file. Environment variables override
// nothing here; they cover deployment concerns (ports, URLs, keys) while
// the file covers gameplay tuning.
type Settings struct {
	Session struct {
		Capacity                int `yaml:"capacity"`
		NarrativeTimeoutSeconds int `yaml:"narrative_timeout_seconds"`
	} `yaml:"session"`
	Narrative struct {
		Model            string  `yaml:"model"`
		DailyBudgetUSD   float64 `yaml:"daily_budget_usd"`
		MonthlyBudgetUSD float64 `yaml:"monthly_budget_usd"`
		LedgerPath       string  `yaml:"ledger_path"`
	} `yaml:"narrative"`
	Autopilot struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		Workers         int `yaml:"workers"`
	} `yaml:"autopilot"`
}

func defaultSettings() Settings {
	var s Settings
	s.Session.Capacity = 256
	s.Session.NarrativeTimeoutSeconds = 10
	s.Narrative.Model = "gpt-4o-mini"
	s.Narrative.DailyBudgetUSD = 1.0
	s.Narrative.MonthlyBudgetUSD = 10.0
	s.Narrative.LedgerPath = "narrative.db"
	s.Autopilot.IntervalSeconds = 15
	s.Autopilot.Workers = 2
	return s
}

// loadSettings reads the YAML settings file. A missing file yields the
// defaults; a malformed file is an error.
func loadSettings(path string) (Settings, error) {
	settings := defaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse config: %w", err)
	}
	return settings, nil
}

func (s Settings) narrativeTimeout() time.Duration {
	return time.Duration(s.Session.NarrativeTimeoutSeconds) * time.Second
}

func (s Settings) autopilotInterval() time.Duration {
	return time.Duration(s.Autopilot.IntervalSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
