// Package pipeline turns extracted tables into files under the output
// directory.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/aluiziolira/go-scrape-fbref/models"
	"github.com/aluiziolira/go-scrape-fbref/parser"
)

var (
	// ErrNilTable is returned when Persist is handed an absent table.
	ErrNilTable = errors.New("pipeline: nil table")
)

// OutputWriter defines the interface for data output.
type OutputWriter interface {
	Write(table *models.Table) error
	Close() error
	Validate() error
}

// WriterFactory opens the writer for one output file.
type WriterFactory func(format, filename string) (OutputWriter, error)

// Pipeline prepares season directories and writes tables to their files.
type Pipeline struct {
	baseDir   string
	format    string
	newWriter WriterFactory

	metrics metrics
}

// NewPipeline builds a pipeline writing under baseDir in format.
func NewPipeline(baseDir, format string) *Pipeline {
	return &Pipeline{
		baseDir:   baseDir,
		format:    format,
		newWriter: CreateWriter,
		metrics:   newMetrics(),
	}
}

// WithWriterFactory replaces the writer constructor.
func (p *Pipeline) WithWriterFactory(f WriterFactory) *Pipeline {
	p.newWriter = f
	return p
}

// BaseDir returns the output root.
func (p *Pipeline) BaseDir() string {
	return p.baseDir
}

// Prepare creates the output root.
func (p *Pipeline) Prepare() error {
	if err := os.MkdirAll(p.baseDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %q: %w", p.baseDir, err)
	}
	return nil
}

// PrepareSeason creates the players and teams directories of season.
func (p *Pipeline) PrepareSeason(season string) error {
	for _, dir := range SeasonDirs(p.baseDir, season) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Persist writes table to the file of (season, role, category) and returns
// the path and number of rows written. Player tables lose their repeated
// header rows first.
func (p *Pipeline) Persist(season string, role models.Role, category string, table *models.Table) (string, int, error) {
	if table == nil {
		return "", 0, ErrNilTable
	}
	if role == models.RolePlayers {
		table = parser.DropHeaderArtifacts(table)
	}

	path := OutputPath(p.baseDir, season, role, category)
	writer, err := p.newWriter(p.format, path)
	if err != nil {
		return path, 0, err
	}
	if err := writer.Write(table); err != nil {
		writer.Close()
		return path, 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return path, 0, fmt.Errorf("close %s: %w", path, err)
	}
	if err := writer.Validate(); err != nil {
		return path, 0, fmt.Errorf("validate %s: %w", path, err)
	}

	p.metrics.addWritten(role, table.Len())
	return path, table.Len(), nil
}

// GetMetrics returns a snapshot of the internal counters.
func (p *Pipeline) GetMetrics() map[string]interface{} {
	return p.metrics.snapshot()
}

// CreateWriter opens the writer for format. filename is the CSV path; JSON
// output uses the same name with a .jsonl extension.
func CreateWriter(format, filename string) (OutputWriter, error) {
	switch format {
	case "json":
		return NewJSONWriter(jsonPath(filename))
	case "csv", "":
		return NewCSVWriter(filename)
	case "dual":
		return NewDualWriter(filename, jsonPath(filename))
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

type metrics struct {
	mu      *sync.Mutex
	rows    int64
	written map[models.Role]int
}

func newMetrics() metrics {
	return metrics{
		mu:      &sync.Mutex{},
		written: make(map[models.Role]int),
	}
}

func (m *metrics) addWritten(role models.Role, rows int) {
	m.mu.Lock()
	m.written[role]++
	m.rows += int64(rows)
	m.mu.Unlock()
}

func (m *metrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	written := make(map[models.Role]int, len(m.written))
	for k, v := range m.written {
		written[k] = v
	}

	return map[string]interface{}{
		"written_rows":   m.rows,
		"written_tables": written,
	}
}
