package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

type csvRows struct {
	f *os.File
	r *csv.Reader
}

func openCSV(path string, delim rune) (*csvRows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	// Leading-space trimming would swallow empty tab-separated fields.
	r.TrimLeadingSpace = delim != '\t'
	r.Comma = delim
	return &csvRows{f: f, r: r}, nil
}

func (c *csvRows) Next() ([]string, error) { return c.r.Read() }

func (c *csvRows) Close() error { return c.f.Close() }

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	// Filename heuristic only; the file is read once.
	return ','
}
