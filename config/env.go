package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvString returns the trimmed value of key when it is set and non-empty.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

// EnvInt parses key as an integer when it is set.
func EnvInt(key string) (int, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// EnvDuration parses key as a Go duration ("10s", "1m30s") when it is set.
func EnvDuration(key string) (time.Duration, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return 0, false, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// EnvBool parses key with strconv.ParseBool when it is set.
func EnvBool(key string) (bool, bool, error) {
	raw, ok := EnvString(key)
	if !ok {
		return false, false, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// ApplyEnv overlays FBREF_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	if value, ok := EnvString("FBREF_BASE_URL"); ok {
		c.BaseURL = value
	}
	if value, ok := EnvString("FBREF_LOCALE"); ok {
		c.Locale = value
	}
	if value, ok := EnvString("FBREF_COMPETITION_SLUG"); ok {
		c.CompetitionSlug = value
	}
	if value, ok := EnvString("FBREF_USER_AGENT"); ok {
		c.UserAgent = value
	}
	if value, ok := EnvString("FBREF_OUTPUT_DIR"); ok {
		c.OutputDir = value
	}
	if value, ok := EnvString("FBREF_OUTPUT_FORMAT"); ok {
		c.OutputFormat = strings.ToLower(value)
	}
	if value, ok := EnvString("FBREF_LOG_FILE"); ok {
		c.LogFile = value
	}
	if value, ok := EnvString("FBREF_FETCHER"); ok {
		c.Fetcher = strings.ToLower(value)
	}
	if value, ok := EnvString("FBREF_METRICS_ADDR"); ok {
		c.MetricsAddr = value
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"FBREF_START_YEAR", &c.StartYear},
		{"FBREF_END_YEAR", &c.EndYear},
		{"FBREF_COMPETITION_ID", &c.CompetitionID},
	}
	for _, item := range ints {
		value, ok, err := EnvInt(item.key)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = value
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"FBREF_PAGE_LOAD_TIMEOUT", &c.PageLoadTimeout},
		{"FBREF_READY_TIMEOUT", &c.ReadyTimeout},
		{"FBREF_MIN_SETTLE", &c.MinSettle},
		{"FBREF_CATEGORY_DELAY", &c.CategoryDelay},
		{"FBREF_SEASON_DELAY", &c.SeasonDelay},
		{"FBREF_SESSION_RELEASE_DELAY", &c.SessionReleaseDelay},
	}
	for _, item := range durations {
		value, ok, err := EnvDuration(item.key)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = value
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"FBREF_HEADLESS", &c.Headless},
		{"FBREF_NO_SANDBOX", &c.NoSandbox},
		{"FBREF_VERBOSE", &c.Verbose},
	}
	for _, item := range bools {
		value, ok, err := EnvBool(item.key)
		if err != nil {
			return err
		}
		if ok {
			*item.dst = value
		}
	}
	return nil
}
