package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

// CSVWriter writes a table as UTF-8 CSV preceded by a byte order mark, so
// spreadsheet tools detect the encoding of accented names.
type CSVWriter struct {
	file          *os.File
	encoder       *transform.Writer
	writer        *csv.Writer
	headerWritten bool
	mu            sync.Mutex
}

// NewCSVWriter creates filename, including missing parent directories.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	encoder := transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	return &CSVWriter{
		file:    f,
		encoder: encoder,
		writer:  csv.NewWriter(encoder),
	}, nil
}

// Write appends the table rows, preceded by its header on the first call.
func (cw *CSVWriter) Write(table *models.Table) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.headerWritten {
		if err := cw.writer.Write(table.Header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		cw.headerWritten = true
	}
	for _, row := range table.Rows {
		if err := cw.writer.Write(row); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	if err := cw.encoder.Close(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv encoder: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures a header was written.
func (cw *CSVWriter) Validate() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if !cw.headerWritten {
		return fmt.Errorf("csv file has no header")
	}
	return nil
}

// JSONWriter writes one JSON object per row, keyed by header name.
type JSONWriter struct {
	file   *os.File
	writer *bufio.Writer
	rows   int
	mu     sync.Mutex
}

// NewJSONWriter initialises the JSON Lines writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	return &JSONWriter{
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Write appends the table rows in JSONL format, keeping column order.
func (jw *JSONWriter) Write(table *models.Table) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, row := range table.Rows {
		line, err := encodeRow(table.Header, row)
		if err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
		if _, err := jw.writer.Write(line); err != nil {
			return fmt.Errorf("write json record: %w", err)
		}
		jw.rows++
	}

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate is a no-op: an empty table legitimately produces an empty file.
func (jw *JSONWriter) Validate() error {
	return nil
}

func encodeRow(header, row []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range header {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value := ""
		if i < len(row) {
			value = row[i]
		}
		val, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
