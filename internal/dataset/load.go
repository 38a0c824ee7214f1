package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Reliable release-year window used when nothing else is configured.
const (
	DefaultYearMin = 2010
	DefaultYearMax = 2019
)

// Options controls how a dataset file is read.
type Options struct {
	// YearMin and YearMax bound release_year, both inclusive.
	YearMin int
	YearMax int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Sheet selects the XLSX worksheet; empty means the first sheet.
	Sheet string
	// Table selects the SQLite table; empty means the first user table.
	Table string
}

// DefaultOptions returns the reliable-period window and auto-detected format settings.
func DefaultOptions() Options {
	return Options{YearMin: DefaultYearMin, YearMax: DefaultYearMax}
}

// Load reads the file at path and keeps rows with yearMin <= release_year <= yearMax.
func Load(path string, yearMin, yearMax int) (*Dataset, error) {
	opt := DefaultOptions()
	opt.YearMin = yearMin
	opt.YearMax = yearMax
	return LoadWithOptions(path, opt)
}

// LoadWithOptions is Load with explicit format options.
func LoadWithOptions(path string, opt Options) (*Dataset, error) {
	if opt.YearMin > opt.YearMax {
		return nil, &DataLoadError{Path: path, Err: fmt.Errorf("invalid year range %d-%d", opt.YearMin, opt.YearMax)}
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &DataLoadError{Path: path, Err: errors.New("path is a directory")}
	}
	rr, err := openRows(path, opt)
	if err != nil {
		var dle *DataLoadError
		if errors.As(err, &dle) {
			return nil, err
		}
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer rr.Close()
	return readDataset(path, rr, opt)
}

// rowReader yields the header first, then data rows, then io.EOF.
type rowReader interface {
	Next() ([]string, error)
	Close() error
}

func openRows(path string, opt Options) (rowReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openXLSX(path, opt.Sheet)
	case ".sqlite", ".sqlite3", ".db":
		return openSQLite(path, opt.Table)
	case ".xls", ".json", ".parquet":
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	default:
		delim := opt.Delimiter
		if delim == 0 {
			delim = sniffDelimiter(path)
		}
		return openCSV(path, delim)
	}
}

// schema maps each known field to its column index in the header.
type schema map[Field]int

func newSchema(header []string) (schema, []string) {
	sc := schema{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		f := Field(name)
		if !f.IsGroup() && !f.IsValue() {
			continue
		}
		if _, dup := sc[f]; !dup {
			sc[f] = i
		}
	}
	var missing []string
	for _, f := range RequiredFields {
		if _, ok := sc[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	return sc, missing
}

func (sc schema) cell(row []string, f Field) string {
	idx, ok := sc[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func readDataset(path string, rr rowReader, opt Options) (*Dataset, error) {
	header, err := rr.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataLoadError{Path: path, Err: fmt.Errorf("%w: empty file", ErrMalformed)}
		}
		return nil, &DataLoadError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	sc, missing := newSchema(header)
	if len(missing) > 0 {
		return nil, &DataLoadError{Path: path, Column: strings.Join(missing, ", "), Err: ErrMissingColumn}
	}

	var (
		records []GameRecord
		rowNum  int
	)
	for {
		row, err := rr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &DataLoadError{Path: path, Row: rowNum + 1, Err: err}
		}
		if blankRow(row) {
			continue
		}
		rowNum++
		rec, hasYear, col, err := parseRecord(sc, row)
		if err != nil {
			return nil, &DataLoadError{Path: path, Row: rowNum, Column: string(col), Err: err}
		}
		// A null year is never inside the window.
		if !hasYear || rec.ReleaseYear < opt.YearMin || rec.ReleaseYear > opt.YearMax {
			continue
		}
		records = append(records, rec)
	}
	return New(path, opt.YearMin, opt.YearMax, records, rowNum), nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRecord(sc schema, row []string) (GameRecord, bool, Field, error) {
	rec := GameRecord{
		Title:     sc.cell(row, FieldTitle),
		Console:   sc.cell(row, FieldConsole),
		Genre:     sc.cell(row, FieldGenre),
		Publisher: sc.cell(row, FieldPublisher),
	}

	year, hasYear, err := parseNumber(sc.cell(row, FieldReleaseYear))
	if err != nil {
		return rec, false, FieldReleaseYear, err
	}
	if hasYear {
		if year != math.Trunc(year) || math.IsInf(year, 0) {
			return rec, false, FieldReleaseYear, fmt.Errorf("%w: year %v is not a whole number", ErrMalformed, year)
		}
		rec.ReleaseYear = int(year)
	}

	score, ok, err := parseNumber(sc.cell(row, FieldCriticScore))
	if err != nil {
		return rec, false, FieldCriticScore, err
	}
	if ok {
		rec.CriticScore = &score
	}

	sales := []struct {
		f   Field
		dst *float64
	}{
		{FieldNASales, &rec.NASales},
		{FieldPALSales, &rec.PALSales},
		{FieldJPSales, &rec.JPSales},
		{FieldOtherSales, &rec.OtherSales},
		{FieldTotalSales, &rec.TotalSales},
	}
	for _, s := range sales {
		v, _, err := parseNumber(sc.cell(row, s.f))
		if err != nil {
			return rec, false, s.f, err
		}
		// Empty sales cells read as 0: the input is pre-cleaned.
		*s.dst = v
	}
	return rec, hasYear, "", nil
}

// parseNumber returns ok=false for empty or NaN cells.
func parseNumber(s string) (float64, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q is not a number", ErrMalformed, s)
	}
	if math.IsNaN(f) {
		return 0, false, nil
	}
	return f, true, nil
}
