package scraper

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-fbref/config"
	"github.com/aluiziolira/go-scrape-fbref/models"
	"github.com/aluiziolira/go-scrape-fbref/pipeline"
)

// ClassificationURL is the competition overview page of season. The most
// recent season lives at the competition root and carries no season segment.
func ClassificationURL(cfg *config.Config, season string, latest bool) string {
	if latest {
		return fmt.Sprintf("%s/Estadisticas-de-%s", compRoot(cfg), cfg.CompetitionSlug)
	}
	return fmt.Sprintf("%s/%s/Estadisticas-%s-%s", compRoot(cfg), season, season, cfg.CompetitionSlug)
}

// CategoryURL is the statistics page of one category in season.
func CategoryURL(cfg *config.Config, season, segment string, latest bool) string {
	if latest {
		return fmt.Sprintf("%s/%s/Estadisticas-de-%s", compRoot(cfg), segment, cfg.CompetitionSlug)
	}
	return fmt.Sprintf("%s/%s/%s/Estadisticas-%s-%s", compRoot(cfg), season, segment, season, cfg.CompetitionSlug)
}

func compRoot(cfg *config.Config) string {
	return fmt.Sprintf("%s/%s/comps/%d", strings.TrimRight(cfg.BaseURL, "/"), cfg.Locale, cfg.CompetitionID)
}

// PlannedFetch is one page the scraper will visit and the files it may
// produce from it.
type PlannedFetch struct {
	Season   string
	Category string // empty for the classification page
	URL      string
	Outputs  []string
}

// Plan lists every page of a run in visiting order without fetching.
func Plan(cfg *config.Config) []PlannedFetch {
	seasons := cfg.Seasons()
	out := make([]PlannedFetch, 0, len(seasons)*(len(cfg.Categories)+1))
	for i, season := range seasons {
		label := season.Label()
		latest := i == 0
		out = append(out, PlannedFetch{
			Season:  label,
			URL:     ClassificationURL(cfg, label, latest),
			Outputs: []string{pipeline.OutputPath(cfg.OutputDir, label, models.RoleClassification, "")},
		})
		for _, cat := range cfg.Categories {
			out = append(out, PlannedFetch{
				Season:   label,
				Category: cat.DisplayName,
				URL:      CategoryURL(cfg, label, cat.URLSegment, latest),
				Outputs: []string{
					pipeline.OutputPath(cfg.OutputDir, label, models.RolePlayers, cat.DisplayName),
					pipeline.OutputPath(cfg.OutputDir, label, models.RoleTeamsFor, cat.DisplayName),
					pipeline.OutputPath(cfg.OutputDir, label, models.RoleTeamsAgainst, cat.DisplayName),
				},
			})
		}
	}
	return out
}
