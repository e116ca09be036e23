package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

// Fetcher kinds.
const (
	FetcherBrowser = "browser"
	FetcherStatic  = "static"
)

// Config holds scraper configuration.
type Config struct {
	BaseURL         string
	Locale          string
	CompetitionID   int
	CompetitionSlug string
	StartYear       int
	EndYear         int

	OutputDir    string
	OutputFormat string // csv, json, or dual
	LogFile      string

	Fetcher   string // browser or static
	Headless  bool
	NoSandbox bool
	UserAgent string

	PageLoadTimeout     time.Duration
	ReadyTimeout        time.Duration
	MinSettle           time.Duration
	CategoryDelay       time.Duration
	SeasonDelay         time.Duration
	SessionReleaseDelay time.Duration

	Verbose     bool
	MetricsAddr string

	Categories []models.Category
}

// DefaultConfig returns the La Liga settings covering 2024-2025 back to
// 2017-2018.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:             "https://fbref.com",
		Locale:              "es",
		CompetitionID:       12,
		CompetitionSlug:     "La-Liga",
		StartYear:           2024,
		EndYear:             2017,
		OutputDir:           "datos_fbref",
		OutputFormat:        "csv",
		LogFile:             "scraping.log",
		Fetcher:             FetcherBrowser,
		Headless:            true,
		NoSandbox:           false,
		UserAgent:           "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		PageLoadTimeout:     60 * time.Second,
		ReadyTimeout:        15 * time.Second,
		MinSettle:           10 * time.Second,
		CategoryDelay:       2 * time.Second,
		SeasonDelay:         10 * time.Second,
		SessionReleaseDelay: 2 * time.Second,
		Verbose:             false,
		Categories:          DefaultCategories(),
	}
}

// Seasons returns the configured seasons, most recent first.
func (c *Config) Seasons() []models.Season {
	return models.Seasons(c.StartYear, c.EndYear)
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}

	if strings.TrimSpace(c.Locale) == "" {
		return fmt.Errorf("locale cannot be empty")
	}
	if c.CompetitionID <= 0 {
		return fmt.Errorf("competition id must be positive")
	}
	if strings.TrimSpace(c.CompetitionSlug) == "" {
		return fmt.Errorf("competition slug cannot be empty")
	}
	if c.StartYear < c.EndYear {
		return fmt.Errorf("start year (%d) cannot be older than end year (%d)", c.StartYear, c.EndYear)
	}
	if c.EndYear < 1888 {
		return fmt.Errorf("end year %d is out of range", c.EndYear)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.Fetcher != FetcherBrowser && c.Fetcher != FetcherStatic {
		return fmt.Errorf("fetcher must be %s or %s", FetcherBrowser, FetcherStatic)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.PageLoadTimeout <= 0 {
		return fmt.Errorf("page load timeout must be positive")
	}
	if c.ReadyTimeout < 0 {
		return fmt.Errorf("ready timeout cannot be negative")
	}
	if c.MinSettle < 0 {
		return fmt.Errorf("min settle cannot be negative")
	}
	if c.CategoryDelay < 0 {
		return fmt.Errorf("category delay cannot be negative")
	}
	if c.SeasonDelay < 0 {
		return fmt.Errorf("season delay cannot be negative")
	}
	if c.SessionReleaseDelay < 0 {
		return fmt.Errorf("session release delay cannot be negative")
	}

	return validateCategories(c.Categories)
}

func validateCategories(categories []models.Category) error {
	if len(categories) == 0 {
		return fmt.Errorf("categories cannot be empty")
	}

	keys := make(map[string]struct{}, len(categories))
	ids := make(map[string]string, len(categories)*3)
	for _, cat := range categories {
		if cat.Key == "" {
			return fmt.Errorf("category key cannot be empty")
		}
		if _, ok := keys[cat.Key]; ok {
			return fmt.Errorf("duplicate category key %q", cat.Key)
		}
		keys[cat.Key] = struct{}{}

		if cat.URLSegment == "" {
			return fmt.Errorf("category %s: url segment cannot be empty", cat.Key)
		}
		if cat.DisplayName == "" {
			return fmt.Errorf("category %s: display name cannot be empty", cat.Key)
		}
		if strings.ContainsAny(cat.DisplayName, `/\`) {
			return fmt.Errorf("category %s: display name cannot contain path separators", cat.Key)
		}

		for _, id := range []string{cat.PlayerTableID, cat.TeamForTableID, cat.TeamAgainstTableID} {
			if id == "" {
				return fmt.Errorf("category %s: table ids cannot be empty", cat.Key)
			}
			if owner, ok := ids[id]; ok {
				return fmt.Errorf("category %s: table id %q already used by %s", cat.Key, id, owner)
			}
			ids[id] = cat.Key
		}
	}
	return nil
}
