package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aluiziolira/go-scrape-fbref/config"
	"github.com/aluiziolira/go-scrape-fbref/models"
	"github.com/aluiziolira/go-scrape-fbref/pipeline"
	"github.com/aluiziolira/go-scrape-fbref/scraper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(scraper.NewSessionFactory).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type factoryFunc func(cfg *config.Config) (scraper.SessionFactory, error)

func newRootCmd(newFactory factoryFunc) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "scraper",
		Short: "Download La Liga statistics tables from fbref",
		Long: `Visits the competition overview and every statistics category page of
each configured season and saves the tables found as CSV files, one
directory per season.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, opts, newFactory)
		},
	}
	opts.register(cmd)
	cmd.AddCommand(newPlanCmd(opts), newCategoriesCmd(opts))
	return cmd
}

func newPlanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the pages a run would visit and the files it would write",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, fetch := range scraper.Plan(cfg) {
				name := fetch.Category
				if name == "" {
					name = "clasificación"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", fetch.Season, name, fetch.URL)
				for _, path := range fetch.Outputs {
					fmt.Fprintf(out, "\t-> %s\n", path)
				}
			}
			return nil
		},
	}
}

func newCategoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the statistics categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Key", "Segment", "Players", "Teams for", "Teams against", "Name"})
			for _, cat := range cfg.Categories {
				t.AppendRow(table.Row{cat.Key, cat.URLSegment, cat.PlayerTableID, cat.TeamForTableID, cat.TeamAgainstTableID, cat.DisplayName})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}

func runScrape(cmd *cobra.Command, opts *options, newFactory factoryFunc) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cmd.OutOrStdout(), cfg.Verbose, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	sessions, err := newFactory(cfg)
	if err != nil {
		return err
	}
	p := pipeline.NewPipeline(cfg.OutputDir, cfg.OutputFormat)
	s, err := scraper.NewScraper(cfg, sessions, p)
	if err != nil {
		return fmt.Errorf("initialising scraper: %w", err)
	}

	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("start_year", cfg.StartYear),
		slog.Int("end_year", cfg.EndYear),
		slog.Int("categories", len(cfg.Categories)),
		slog.String("fetcher", sessions.Name()),
		slog.String("output_dir", cfg.OutputDir),
	)

	ctx := cmd.Context()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, finishing current page")
		case <-done:
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, runErr := s.Run(ctx)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	if result != nil {
		printSummary(cmd.OutOrStdout(), result, p.GetMetrics(), cfg.OutputDir)
	}
	if runErr != nil {
		return fmt.Errorf("scraping failed: %w", runErr)
	}
	return nil
}

func printSummary(w io.Writer, result *models.ScraperResult, metrics map[string]interface{}, outputDir string) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "Scrape complete")

	rows := int64(0)
	if written, ok := metrics["written_rows"].(int64); ok {
		rows = written
	}

	fmt.Fprintf(w, "  Seasons:       %d (%d failed)\n", result.SeasonsTotal, len(result.SeasonsFailed))
	if len(result.SeasonsFailed) > 0 {
		fmt.Fprintf(w, "  Failed:        %s\n", strings.Join(result.SeasonsFailed, ", "))
	}
	fmt.Fprintf(w, "  Categories:    %d\n", result.CategoriesCount)
	fmt.Fprintf(w, "  Requests:      %d\n", result.RequestCount)
	fmt.Fprintf(w, "  Tables:        %s\n", formatRoleCounts(result.TablesWritten))
	if len(result.TablesMissing) > 0 {
		fmt.Fprintf(w, "  Missing:       %s\n", formatRoleCounts(result.TablesMissing))
	}
	fmt.Fprintf(w, "  Rows written:  %d\n", rows)
	if len(result.ErrorsByType) > 0 {
		fmt.Fprintf(w, "  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Fprintf(w, "  Duration:      %v\n", result.EndTime.Sub(result.StartTime).Round(time.Second))
	fmt.Fprintf(w, "  Output dir:    %s\n", outputDir)
	fmt.Fprintln(w, separator)
}

func formatRoleCounts(counts map[models.Role]int) string {
	parts := make([]string, 0, len(counts))
	for role, n := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", role, n))
	}
	sort.Strings(parts)
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// newLogger writes text records to stdout and, when logFile is set, appends
// them to logFile as well.
func newLogger(stdout io.Writer, verbose bool, logFile string) (*slog.Logger, func(), error) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	out := stdout
	closeFn := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(stdout, f)
		closeFn = func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
			}
		}
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeFn, nil
}
