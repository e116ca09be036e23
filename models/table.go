// Package models defines data structures for the scraper.
package models

import "time"

// Role identifies which of the tables on a page a file holds.
type Role string

const (
	RoleClassification Role = "classification"
	RolePlayers        Role = "players"
	RoleTeamsFor       Role = "teams_for"
	RoleTeamsAgainst   Role = "teams_against"
)

// Table is an extracted HTML table. No schema is enforced: the header and
// cells are whatever the page contained at fetch time.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ScraperResult holds the overall result of a scraping run.
type ScraperResult struct {
	StartTime       time.Time
	EndTime         time.Time
	SeasonsTotal    int
	SeasonsFailed   []string
	TablesWritten   map[Role]int
	TablesMissing   map[Role]int
	ErrorsByType    map[string]int
	RequestCount    int
	CategoriesCount int
}

// NewScraperResult returns a result with its maps initialised.
func NewScraperResult() *ScraperResult {
	return &ScraperResult{
		StartTime:     time.Now(),
		TablesWritten: make(map[Role]int),
		TablesMissing: make(map[Role]int),
		ErrorsByType:  make(map[string]int),
	}
}
