package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

// Season sub-directories.
const (
	PlayersDir = "Jugadores"
	TeamsDir   = "Equipos"
)

// RoleDir returns the season sub-directory holding files of role.
func RoleDir(role models.Role) string {
	if role == models.RolePlayers {
		return PlayersDir
	}
	return TeamsDir
}

// FileName returns the CSV file name of a table. category is the display
// name and is ignored for the classification table.
func FileName(season string, role models.Role, category string) string {
	switch role {
	case models.RoleClassification:
		return "Equipos_clasificación_" + season + ".csv"
	case models.RolePlayers:
		return "Jugadores_" + category + "_" + season + ".csv"
	case models.RoleTeamsFor:
		return "Equipos_" + category + "_a_favor_" + season + ".csv"
	case models.RoleTeamsAgainst:
		return "Equipos_" + category + "_en_contra_" + season + ".csv"
	default:
		return string(role) + "_" + category + "_" + season + ".csv"
	}
}

// OutputPath returns {base}/{season}/{Jugadores|Equipos}/{file name}.
func OutputPath(base, season string, role models.Role, category string) string {
	return filepath.Join(base, season, RoleDir(role), FileName(season, role, category))
}

// SeasonDirs returns the directories a season writes into.
func SeasonDirs(base, season string) []string {
	return []string{
		filepath.Join(base, season, PlayersDir),
		filepath.Join(base, season, TeamsDir),
	}
}

func jsonPath(csvPath string) string {
	return strings.TrimSuffix(csvPath, ".csv") + ".jsonl"
}
