package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-fbref/config"
)

// options holds flag values. A value only overrides the lower layers when
// its flag was set on the command line.
type options struct {
	configFile string

	baseURL         string
	locale          string
	competitionID   int
	competitionSlug string
	startYear       int
	endYear         int
	outputDir       string
	outputFormat    string
	logFile         string
	fetcher         string
	headless        bool
	noSandbox       bool
	userAgent       string
	pageLoadTimeout time.Duration
	readyTimeout    time.Duration
	minSettle       time.Duration
	categoryDelay   time.Duration
	seasonDelay     time.Duration
	releaseDelay    time.Duration
	verbose         bool
	metricsAddr     string
	categories      []string
}

func (o *options) register(cmd *cobra.Command) {
	d := config.DefaultConfig()
	fl := cmd.PersistentFlags()

	fl.StringVar(&o.configFile, "config", "", "JSON5 configuration file")
	fl.StringVar(&o.baseURL, "base-url", d.BaseURL, "Site root")
	fl.StringVar(&o.locale, "locale", d.Locale, "Site locale path segment")
	fl.IntVar(&o.competitionID, "competition-id", d.CompetitionID, "Competition id")
	fl.StringVar(&o.competitionSlug, "competition-slug", d.CompetitionSlug, "Competition slug used in page names")
	fl.IntVar(&o.startYear, "start-year", d.StartYear, "First year of the newest season")
	fl.IntVar(&o.endYear, "end-year", d.EndYear, "First year of the oldest season")
	fl.StringVar(&o.outputDir, "output-dir", d.OutputDir, "Output root directory")
	fl.StringVar(&o.outputFormat, "format", d.OutputFormat, "Output format: csv, json, or dual")
	fl.StringVar(&o.logFile, "log-file", d.LogFile, "Log file, appended to (empty disables)")
	fl.StringVar(&o.fetcher, "fetcher", d.Fetcher, "Page fetcher: browser or static")
	fl.BoolVar(&o.headless, "headless", d.Headless, "Run the browser without a window")
	fl.BoolVar(&o.noSandbox, "no-sandbox", d.NoSandbox, "Disable the Chrome sandbox (containers)")
	fl.StringVar(&o.userAgent, "user-agent", d.UserAgent, "User-Agent header")
	fl.DurationVar(&o.pageLoadTimeout, "page-load-timeout", d.PageLoadTimeout, "Navigation timeout")
	fl.DurationVar(&o.readyTimeout, "ready-timeout", d.ReadyTimeout, "Maximum wait for the expected table")
	fl.DurationVar(&o.minSettle, "min-settle", d.MinSettle, "Minimum time per page from navigation start")
	fl.DurationVar(&o.categoryDelay, "category-delay", d.CategoryDelay, "Pause between categories")
	fl.DurationVar(&o.seasonDelay, "season-delay", d.SeasonDelay, "Pause between seasons")
	fl.DurationVar(&o.releaseDelay, "session-release-delay", d.SessionReleaseDelay, "Pause after closing a session")
	fl.BoolVarP(&o.verbose, "verbose", "v", d.Verbose, "Enable verbose logging")
	fl.StringVar(&o.metricsAddr, "metrics-addr", d.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	fl.StringSliceVar(&o.categories, "categories", nil, "Category keys to scrape (default all)")
}

// load builds the configuration: defaults, then the config file, then
// FBREF_* variables, then flags set explicitly.
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configFile != "" {
		if err := config.LoadFile(o.configFile, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	o.apply(cmd, cfg)

	selected, err := config.SelectCategories(cfg.Categories, o.categories)
	if err != nil {
		return nil, err
	}
	cfg.Categories = selected

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if changed("locale") {
		cfg.Locale = o.locale
	}
	if changed("competition-id") {
		cfg.CompetitionID = o.competitionID
	}
	if changed("competition-slug") {
		cfg.CompetitionSlug = o.competitionSlug
	}
	if changed("start-year") {
		cfg.StartYear = o.startYear
	}
	if changed("end-year") {
		cfg.EndYear = o.endYear
	}
	if changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if changed("format") {
		cfg.OutputFormat = strings.ToLower(o.outputFormat)
	}
	if changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if changed("fetcher") {
		cfg.Fetcher = strings.ToLower(o.fetcher)
	}
	if changed("headless") {
		cfg.Headless = o.headless
	}
	if changed("no-sandbox") {
		cfg.NoSandbox = o.noSandbox
	}
	if changed("user-agent") {
		cfg.UserAgent = o.userAgent
	}
	if changed("page-load-timeout") {
		cfg.PageLoadTimeout = o.pageLoadTimeout
	}
	if changed("ready-timeout") {
		cfg.ReadyTimeout = o.readyTimeout
	}
	if changed("min-settle") {
		cfg.MinSettle = o.minSettle
	}
	if changed("category-delay") {
		cfg.CategoryDelay = o.categoryDelay
	}
	if changed("season-delay") {
		cfg.SeasonDelay = o.seasonDelay
	}
	if changed("session-release-delay") {
		cfg.SessionReleaseDelay = o.releaseDelay
	}
	if changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = o.metricsAddr
	}
}
