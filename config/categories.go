package config

import (
	"fmt"
	"strings"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

// DefaultCategories returns the statistics pages scraped for each season,
// in processing order. Display names are the Spanish labels used in file
// names.
func DefaultCategories() []models.Category {
	return []models.Category{
		category("standard", "stats", "stats_standard", "general"),
		category("keepers", "keepers", "stats_keeper", "porteros"),
		category("keepers_adv", "keepersadv", "stats_keeper_adv", "porteros_avanzado"),
		category("shooting", "shooting", "stats_shooting", "tiros"),
		category("passing", "passing", "stats_passing", "pases"),
		category("passing_types", "passing_types", "stats_passing_types", "tipos_pase"),
		category("gca", "gca", "stats_gca", "creación_gol"),
		category("defense", "defense", "stats_defense", "defensa"),
		category("possession", "possession", "stats_possession", "posesión"),
		category("playing_time", "playingtime", "stats_playing_time", "minutos"),
		category("misc", "misc", "stats_misc", "otros"),
	}
}

// category builds a descriptor following the site's id scheme: player
// tables are stats_<topic>, squad tables stats_squads_<topic>_for/_against.
func category(key, segment, playerID, displayName string) models.Category {
	topic := playerID[len("stats_"):]
	return models.Category{
		Key:                key,
		URLSegment:         segment,
		PlayerTableID:      playerID,
		TeamForTableID:     "stats_squads_" + topic + "_for",
		TeamAgainstTableID: "stats_squads_" + topic + "_against",
		DisplayName:        displayName,
	}
}

// SelectCategories keeps the categories named by keys, in registry order.
// An empty keys list selects everything.
func SelectCategories(all []models.Category, keys []string) ([]models.Category, error) {
	if len(keys) == 0 {
		return all, nil
	}
	wanted := make(map[string]bool, len(keys))
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		wanted[key] = false
	}

	var out []models.Category
	for _, cat := range all {
		if _, ok := wanted[cat.Key]; ok {
			wanted[cat.Key] = true
			out = append(out, cat)
		}
	}
	for key, found := range wanted {
		if !found {
			return nil, fmt.Errorf("unknown category %q", key)
		}
	}
	return out, nil
}
