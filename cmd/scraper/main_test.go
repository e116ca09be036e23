package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-scrape-fbref/config"
	"github.com/aluiziolira/go-scrape-fbref/models"
	"github.com/aluiziolira/go-scrape-fbref/pipeline"
	"github.com/aluiziolira/go-scrape-fbref/scraper"
)

func execute(t *testing.T, newFactory factoryFunc, args ...string) (string, error) {
	t.Helper()
	if newFactory == nil {
		newFactory = scraper.NewSessionFactory
	}
	cmd := newRootCmd(newFactory)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCategoriesCommand(t *testing.T) {
	out, err := execute(t, nil, "categories")
	require.NoError(t, err)

	require.Contains(t, out, "KEY")
	require.Contains(t, out, "TEAMS AGAINST")
	require.Equal(t, 11, strings.Count(out, "stats_squads_")/2)
	require.Contains(t, out, "stats_keeper_adv")
	require.Contains(t, out, "stats_squads_playing_time_against")
	require.Contains(t, out, "porteros_avanzado")
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, nil, "plan",
		"--start-year", "2024", "--end-year", "2023",
		"--categories", "standard",
		"--output-dir", dir,
	)
	require.NoError(t, err)

	require.Contains(t, out, "https://fbref.com/es/comps/12/Estadisticas-de-La-Liga\n")
	require.Contains(t, out, "https://fbref.com/es/comps/12/stats/Estadisticas-de-La-Liga\n")
	require.Contains(t, out, "https://fbref.com/es/comps/12/2023-2024/Estadisticas-2023-2024-La-Liga\n")
	require.Contains(t, out, "https://fbref.com/es/comps/12/2023-2024/stats/Estadisticas-2023-2024-La-Liga\n")
	require.Contains(t, out, filepath.Join(dir, "2023-2024", "Jugadores", "Jugadores_general_2023-2024.csv"))
	require.Equal(t, 4, strings.Count(out, "https://"))
}

func TestPlanRejectsInvalidConfig(t *testing.T) {
	_, err := execute(t, nil, "plan", "--start-year", "2010", "--end-year", "2020")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid configuration")

	_, err = execute(t, nil, "plan", "--categories", "corners")
	require.ErrorContains(t, err, "unknown category")
}

func TestConfigLayering(t *testing.T) {
	file := filepath.Join(t.TempDir(), "fbref.json5")
	require.NoError(t, os.WriteFile(file, []byte(`{
		// oldest season kept in the file
		start_year: 2021,
		end_year: 2019,
		locale: "en",
	}`), 0o644))

	t.Setenv("FBREF_END_YEAR", "2020")

	out, err := execute(t, nil, "plan", "--config", file, "--start-year", "2022", "--categories", "misc")
	require.NoError(t, err)

	// flag beats env, env beats file, file beats defaults
	require.Contains(t, out, "https://fbref.com/en/comps/12/Estadisticas-de-La-Liga\n")
	require.Contains(t, out, "https://fbref.com/en/comps/12/2020-2021/misc/Estadisticas-2020-2021-La-Liga\n")
	require.NotContains(t, out, "2019-2020")
	require.NotContains(t, out, "2023-2024")
	require.Equal(t, 6, strings.Count(out, "https://"))
	require.Contains(t, out, filepath.Join(config.DefaultConfig().OutputDir, "2021-2022"))
}

func statsPage(cat models.Category) string {
	table := func(id string) string {
		return `<table id="` + id + `"><thead>
<tr><th></th><th colspan="2">Rendimiento</th></tr>
<tr><th>RL</th><th>Equipo</th><th>Gls.</th></tr></thead>
<tbody><tr><th>1</th><td>Athletic Club</td><td>61</td></tr></tbody></table>`
	}
	return "<html><body>" + table(cat.PlayerTableID) + table(cat.TeamForTableID) +
		"<!--" + table(cat.TeamAgainstTableID) + "--></body></html>"
}

func TestRunStaticEndToEnd(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "scraping.log")
	outDir := filepath.Join(dir, "datos")

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://fbref.test/es/comps/12/Estadisticas-de-La-Liga",
		httpmock.NewStringResponder(200, `<html><body><table id="results2024-2025121_overall">
<tr><th>RL</th><th>Equipo</th></tr><tr><td>1</td><td>Barcelona</td></tr></table></body></html>`))

	standard := config.DefaultCategories()[0]
	transport.RegisterResponder("GET", "https://fbref.test/es/comps/12/stats/Estadisticas-de-La-Liga",
		httpmock.NewStringResponder(200, statsPage(standard)))

	newFactory := func(cfg *config.Config) (scraper.SessionFactory, error) {
		return scraper.NewStaticFactory(cfg).WithTransport(transport), nil
	}

	out, err := execute(t, newFactory,
		"--fetcher", "static",
		"--base-url", "https://fbref.test",
		"--start-year", "2024", "--end-year", "2024",
		"--categories", "standard",
		"--output-dir", outDir,
		"--log-file", logFile,
		"--min-settle", "0s",
		"--category-delay", "0s",
		"--season-delay", "0s",
		"--session-release-delay", "0s",
	)
	require.NoError(t, err)
	require.Contains(t, out, "Scrape complete")
	require.Contains(t, out, "players=1")

	for _, role := range []models.Role{models.RolePlayers, models.RoleTeamsFor, models.RoleTeamsAgainst} {
		_, err := os.Stat(pipeline.OutputPath(outDir, "2024-2025", role, standard.DisplayName))
		require.NoError(t, err, "role %s", role)
	}
	_, err = os.Stat(pipeline.OutputPath(outDir, "2024-2025", models.RoleClassification, ""))
	require.NoError(t, err)

	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(logged), "table saved")
	require.Equal(t, 2, transport.GetTotalCallCount())
}

func TestRunFetchErrorIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	transport := httpmock.NewMockTransport()
	newFactory := func(cfg *config.Config) (scraper.SessionFactory, error) {
		return scraper.NewStaticFactory(cfg).WithTransport(transport), nil
	}

	// An unreachable page aborts the season but a session was opened.
	_, err := execute(t, newFactory,
		"--fetcher", "static",
		"--base-url", "https://fbref.test",
		"--start-year", "2024", "--end-year", "2024",
		"--categories", "standard",
		"--output-dir", filepath.Join(dir, "datos"),
		"--log-file=",
		"--min-settle", "0s",
		"--session-release-delay", "0s",
	)
	require.NoError(t, err)
}

func TestNewLoggerAppends(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(logFile, []byte("previous run\n"), 0o644))

	var stdout bytes.Buffer
	logger, closeLog, err := newLogger(&stdout, false, logFile)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("processing season", "season", "2024-2025")
	closeLog()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "previous run\n"))
	require.Contains(t, string(data), "season=2024-2025")
	require.NotContains(t, string(data), "hidden")
	require.Contains(t, stdout.String(), "processing season")
}
