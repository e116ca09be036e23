package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-fbref/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func sampleTable() *models.Table {
	return &models.Table{
		Header: []string{"RL", "Equipo", "Pts"},
		Rows: [][]string{
			{"1", "Atlético de Madrid", "76"},
			{"2", "Málaga, CF", "51"},
		},
	}
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "table.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write(sampleTable()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Fatalf("csv must start with a UTF-8 BOM, got % x", data[:3])
	}
	if bytes.Count(data, utf8BOM) != 1 {
		t.Fatalf("expected exactly one BOM")
	}

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3", len(records))
	}
	if records[0][0] != "RL" || records[0][1] != "Equipo" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "Atlético de Madrid" || records[2][1] != "Málaga, CF" {
		t.Fatalf("non-ASCII or quoted values not preserved: %v", records[1:])
	}
}

func TestCSVWriterHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.csv")
	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write(sampleTable()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Write(sampleTable()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, _ := os.ReadFile(path)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("records=%d, want 5", len(records))
	}
}

func TestCSVWriterValidateWithoutWrite(t *testing.T) {
	writer, err := NewCSVWriter(filepath.Join(t.TempDir(), "empty.csv"))
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	defer writer.Close()
	if err := writer.Validate(); err == nil {
		t.Fatalf("expected validation error before any write")
	}
}

func TestJSONWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.jsonl")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Write(sampleTable()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open json: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		var decoded map[string]string
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid json line: %v", err)
		}
		if decoded["Equipo"] == "" {
			t.Fatalf("missing Equipo key: %v", decoded)
		}
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan json: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("json lines=%d, want 2", len(lines))
	}
	if want := `{"RL":"1","Equipo":"Atlético de Madrid","Pts":"76"}`; lines[0] != want {
		t.Fatalf("first line = %s, want %s", lines[0], want)
	}
}

func TestDualWriterWrite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "table.csv")
	jsonPath := filepath.Join(dir, "table.jsonl")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if err := writer.Write(sampleTable()); err != nil {
		t.Fatalf("write dual: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate dual: %v", err)
	}

	if info, err := os.Stat(csvPath); err != nil || info.Size() == 0 {
		t.Fatalf("csv file missing or empty")
	}
	if info, err := os.Stat(jsonPath); err != nil || info.Size() == 0 {
		t.Fatalf("json file missing or empty")
	}
}

func TestDualWriterValidateNamesFailingFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "table.csv")
	jsonPath := filepath.Join(dir, "table.jsonl")

	writer, err := NewDualWriter(csvPath, jsonPath)
	if err != nil {
		t.Fatalf("create dual writer: %v", err)
	}
	if gotCSV, gotJSON := writer.Paths(); gotCSV != csvPath || gotJSON != jsonPath {
		t.Fatalf("paths = %q %q", gotCSV, gotJSON)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close dual: %v", err)
	}

	err = writer.Validate()
	if err == nil {
		t.Fatal("expected validation error for a table never written")
	}
	if !strings.Contains(err.Error(), csvPath) || strings.Contains(err.Error(), jsonPath) {
		t.Fatalf("error should name only the csv file: %v", err)
	}
}

func TestNewDualWriterReleasesCSVOnJSONFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	jsonPath := filepath.Join(blocker, "table.jsonl")

	_, err := NewDualWriter(filepath.Join(dir, "table.csv"), jsonPath)
	if err == nil || !strings.Contains(err.Error(), jsonPath) {
		t.Fatalf("expected error naming %s, got %v", jsonPath, err)
	}
}
