// Package scraper drives browser sessions over every season and category
// page and hands the tables found to the pipeline.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aluiziolira/go-scrape-fbref/config"
	"github.com/aluiziolira/go-scrape-fbref/models"
	"github.com/aluiziolira/go-scrape-fbref/parser"
	"github.com/aluiziolira/go-scrape-fbref/pipeline"
)

var tableRoles = []models.Role{models.RolePlayers, models.RoleTeamsFor, models.RoleTeamsAgainst}

// Scraper walks seasons and categories sequentially. One session serves a
// whole season; any fetch failure abandons the rest of that season.
type Scraper struct {
	cfg      *config.Config
	sessions SessionFactory
	pipeline *pipeline.Pipeline
	Metrics  *Metrics

	sleep func(ctx context.Context, d time.Duration) error
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config, sessions SessionFactory, p *pipeline.Pipeline) (*Scraper, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session factory is required")
	}
	if p == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	return &Scraper{
		cfg:      cfg,
		sessions: sessions,
		pipeline: p,
		Metrics:  NewMetrics(),
		sleep:    sleepCtx,
	}, nil
}

// Run processes every configured season. It fails only when nothing could
// be processed: the output directory cannot be created, no season managed
// to open a session, or ctx was cancelled.
func (s *Scraper) Run(ctx context.Context) (*models.ScraperResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.pipeline.Prepare(); err != nil {
		return nil, err
	}

	result := models.NewScraperResult()
	seasons := s.cfg.Seasons()
	result.SeasonsTotal = len(seasons)
	opened := 0

	for i, season := range seasons {
		if ctx.Err() != nil {
			break
		}
		label := season.Label()
		slog.Info("processing season", slog.String("season", label))

		started, err := s.runSeason(ctx, label, i == 0, result)
		if started {
			opened++
		}
		if err != nil {
			slog.Error("season aborted", slog.String("season", label), slog.Any("error", err))
			result.SeasonsFailed = append(result.SeasonsFailed, label)
			s.recordError(result, err)
			s.Metrics.IncSeason("failed")
		} else {
			s.Metrics.IncSeason("completed")
		}
		slog.Info("season completed", slog.String("season", label))

		if i < len(seasons)-1 {
			if err := s.sleep(ctx, s.cfg.SeasonDelay); err != nil {
				break
			}
		}
	}

	result.EndTime = time.Now()
	elapsed := result.EndTime.Sub(result.StartTime)
	slog.Info("total run time",
		slog.Int("minutes", int(elapsed/time.Minute)),
		slog.Int("seconds", int((elapsed%time.Minute)/time.Second)),
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(seasons) > 0 && opened == 0 {
		return result, ErrNoSession
	}
	return result, nil
}

// runSeason reports whether a session was opened alongside the error that
// ended the season early, if any.
func (s *Scraper) runSeason(ctx context.Context, season string, latest bool, result *models.ScraperResult) (bool, error) {
	if err := s.pipeline.PrepareSeason(season); err != nil {
		return false, err
	}

	session, err := s.sessions.Open(ctx)
	if err != nil {
		return false, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			slog.Warn("close session", slog.String("season", season), slog.Any("error", err))
		}
		// A cancelled run exits without the release pause.
		if ctx.Err() == nil {
			_ = s.sleep(ctx, s.cfg.SessionReleaseDelay)
		}
	}()

	if err := s.scrapeClassification(ctx, session, season, latest, result); err != nil {
		return true, fmt.Errorf("classification: %w", err)
	}

	for i, cat := range s.cfg.Categories {
		if err := s.scrapeCategory(ctx, session, season, latest, cat, result); err != nil {
			return true, fmt.Errorf("category %s: %w", cat.Key, err)
		}
		result.CategoriesCount++
		if i < len(s.cfg.Categories)-1 {
			if err := s.sleep(ctx, s.cfg.CategoryDelay); err != nil {
				return true, err
			}
		}
	}
	return true, nil
}

func (s *Scraper) scrapeClassification(ctx context.Context, session Session, season string, latest bool, result *models.ScraperResult) error {
	url := ClassificationURL(s.cfg, season, latest)
	doc, err := s.fetch(ctx, session, url, readySelector(parser.ClassificationPrefix), result)
	if err != nil {
		return err
	}

	role := models.RoleClassification
	sel := doc.Classification(season)
	if sel == nil {
		slog.Warn("classification table not found", slog.String("season", season))
		s.recordMissing(result, role)
		return nil
	}

	table, err := parser.ParseTable(sel, 0)
	if err != nil {
		slog.Error("read classification table", slog.String("season", season), slog.Any("error", err))
		s.recordMissing(result, role)
		return nil
	}

	path, rows, err := s.pipeline.Persist(season, role, "", table)
	if err != nil {
		slog.Error("write classification table", slog.String("path", path), slog.Any("error", err))
		s.recordError(result, err)
		return nil
	}
	s.recordWritten(result, role, path, rows)
	return nil
}

func (s *Scraper) scrapeCategory(ctx context.Context, session Session, season string, latest bool, cat models.Category, result *models.ScraperResult) error {
	url := CategoryURL(s.cfg, season, cat.URLSegment, latest)
	slog.Info("processing category",
		slog.String("season", season),
		slog.String("category", cat.DisplayName),
		slog.String("url", url),
	)

	doc, err := s.fetch(ctx, session, url, readySelector(cat.PlayerTableID), result)
	if err != nil {
		return err
	}

	for _, role := range tableRoles {
		table := doc.ExtractTable(cat.TableID(role))
		if table == nil {
			slog.Warn("table not found",
				slog.String("role", string(role)),
				slog.String("category", cat.DisplayName),
				slog.String("table_id", cat.TableID(role)),
			)
			s.recordMissing(result, role)
			continue
		}

		path, rows, err := s.pipeline.Persist(season, role, cat.DisplayName, table)
		if err != nil {
			return fmt.Errorf("persist %s table: %w", role, err)
		}
		s.recordWritten(result, role, path, rows)
	}
	return nil
}

func (s *Scraper) fetch(ctx context.Context, session Session, url, ready string, result *models.ScraperResult) (*parser.Document, error) {
	start := time.Now()
	markup, err := session.Fetch(ctx, url, ready)
	s.Metrics.ObserveDuration(time.Since(start))
	result.RequestCount++
	if err != nil {
		s.Metrics.IncFetch(s.sessions.Name(), "error")
		return nil, err
	}
	s.Metrics.IncFetch(s.sessions.Name(), "ok")

	doc, err := parser.NewDocumentFromString(markup)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	slog.Debug("page fetched",
		slog.String("url", url),
		slog.Int("tables", len(doc.TableIDs())),
		slog.Duration("elapsed", time.Since(start)),
	)
	return doc, nil
}

func (s *Scraper) recordWritten(result *models.ScraperResult, role models.Role, path string, rows int) {
	result.TablesWritten[role]++
	s.Metrics.IncWritten(role)
	slog.Info("table saved",
		slog.String("role", string(role)),
		slog.String("path", path),
		slog.Int("rows", rows),
	)
}

func (s *Scraper) recordMissing(result *models.ScraperResult, role models.Role) {
	result.TablesMissing[role]++
	s.Metrics.IncMissing(role)
}

func (s *Scraper) recordError(result *models.ScraperResult, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	label := errorTypeLabel(err)
	result.ErrorsByType[label]++
	s.Metrics.IncError(label)
}
