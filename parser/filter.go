package parser

import "github.com/aluiziolira/go-scrape-fbref/models"

// HeaderArtifact marks the header rows the site repeats inside player tables.
const HeaderArtifact = "RL"

// DropHeaderArtifacts returns a copy of t without rows whose first cell is
// the repeated-header marker.
func DropHeaderArtifacts(t *models.Table) *models.Table {
	if t == nil {
		return nil
	}
	out := &models.Table{
		Header: t.Header,
		Rows:   make([][]string, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		if len(row) > 0 && row[0] == HeaderArtifact {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}
