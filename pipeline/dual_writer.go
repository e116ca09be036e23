package pipeline

import (
	"errors"
	"fmt"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

// DualWriter saves each table twice: the CSV file and a JSONL file next to
// it. Failures name the file they concern.
type DualWriter struct {
	csvPath  string
	jsonPath string
	csv      *CSVWriter
	json     *JSONWriter
}

// NewDualWriter opens both files. If the JSONL file cannot be created the
// CSV file is closed again.
func NewDualWriter(csvPath, jsonPath string) (*DualWriter, error) {
	csvOut, err := NewCSVWriter(csvPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", csvPath, err)
	}
	jsonOut, err := NewJSONWriter(jsonPath)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("%s: %w", jsonPath, err), csvOut.Close())
	}
	return &DualWriter{csvPath: csvPath, jsonPath: jsonPath, csv: csvOut, json: jsonOut}, nil
}

// Paths returns the CSV and JSONL file names.
func (dw *DualWriter) Paths() (string, string) {
	return dw.csvPath, dw.jsonPath
}

// Write stops at the first file that fails.
func (dw *DualWriter) Write(table *models.Table) error {
	if err := dw.csv.Write(table); err != nil {
		return fmt.Errorf("%s: %w", dw.csvPath, err)
	}
	if err := dw.json.Write(table); err != nil {
		return fmt.Errorf("%s: %w", dw.jsonPath, err)
	}
	return nil
}

// Close closes both files even when the first one fails.
func (dw *DualWriter) Close() error {
	return dw.each(func(w OutputWriter) error { return w.Close() })
}

// Validate checks both files and reports every one that fails.
func (dw *DualWriter) Validate() error {
	return dw.each(func(w OutputWriter) error { return w.Validate() })
}

func (dw *DualWriter) each(fn func(OutputWriter) error) error {
	var errs []error
	if err := fn(dw.csv); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", dw.csvPath, err))
	}
	if err := fn(dw.json); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", dw.jsonPath, err))
	}
	return errors.Join(errs...)
}
