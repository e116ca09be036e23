package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

// fileConfig is the on-disk shape of a configuration file. Durations are
// written as Go duration strings and booleans are pointers so that an
// explicit false can override a true default.
type fileConfig struct {
	BaseURL         string `json:"base_url"`
	Locale          string `json:"locale"`
	CompetitionID   int    `json:"competition_id"`
	CompetitionSlug string `json:"competition_slug"`
	StartYear       int    `json:"start_year"`
	EndYear         int    `json:"end_year"`

	OutputDir    string `json:"output_dir"`
	OutputFormat string `json:"output_format"`
	LogFile      string `json:"log_file"`

	Fetcher   string `json:"fetcher"`
	Headless  *bool  `json:"headless"`
	NoSandbox *bool  `json:"no_sandbox"`
	UserAgent string `json:"user_agent"`

	PageLoadTimeout     string `json:"page_load_timeout"`
	ReadyTimeout        string `json:"ready_timeout"`
	MinSettle           string `json:"min_settle"`
	CategoryDelay       string `json:"category_delay"`
	SeasonDelay         string `json:"season_delay"`
	SessionReleaseDelay string `json:"session_release_delay"`

	MetricsAddr string `json:"metrics_addr"`

	Categories []models.Category `json:"categories"`
}

// LoadFile reads a JSON5 configuration file and merges every value it sets
// over cfg. A categories list in the file replaces the registry wholesale.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var raw fileConfig
	if err := json5.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	override, err := raw.toConfig()
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if err := mergo.Merge(cfg, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge config file: %w", err)
	}
	if raw.Headless != nil {
		cfg.Headless = *raw.Headless
	}
	if raw.NoSandbox != nil {
		cfg.NoSandbox = *raw.NoSandbox
	}

	slog.Debug("loaded config file", slog.String("path", path))
	return nil
}

func (f fileConfig) toConfig() (Config, error) {
	out := Config{
		BaseURL:         f.BaseURL,
		Locale:          f.Locale,
		CompetitionID:   f.CompetitionID,
		CompetitionSlug: f.CompetitionSlug,
		StartYear:       f.StartYear,
		EndYear:         f.EndYear,
		OutputDir:       f.OutputDir,
		OutputFormat:    f.OutputFormat,
		LogFile:         f.LogFile,
		Fetcher:         f.Fetcher,
		UserAgent:       f.UserAgent,
		MetricsAddr:     f.MetricsAddr,
		Categories:      f.Categories,
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"page_load_timeout", f.PageLoadTimeout, &out.PageLoadTimeout},
		{"ready_timeout", f.ReadyTimeout, &out.ReadyTimeout},
		{"min_settle", f.MinSettle, &out.MinSettle},
		{"category_delay", f.CategoryDelay, &out.CategoryDelay},
		{"season_delay", f.SeasonDelay, &out.SeasonDelay},
		{"session_release_delay", f.SessionReleaseDelay, &out.SessionReleaseDelay},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = value
	}
	return out, nil
}
