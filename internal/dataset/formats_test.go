package dataset

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

var fixtureHeader = []interface{}{
	"title", "console", "genre", "publisher", "release_year", "critic_score",
	"na_sales", "pal_sales", "jp_sales", "other_sales", "total_sales",
}

func writeXLSXFixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Notes"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if err := f.SetCellValue("Notes", "A1", "exported from the cleaning notebook"); err != nil {
		t.Fatalf("notes: %v", err)
	}
	if _, err := f.NewSheet("Sales"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]interface{}{
		fixtureHeader,
		{"Halo 4", "X360", "Shooter", "Microsoft", 2012, 8.7, 6.5, 2.1, 0.1, 0.7, 9.4},
		{"Knack", "PS4", "Action", "Sony", 2013, "", 0.8, 0.9, 0.2, 0.3, 2.2},
		{"Wii Sports", "Wii", "Sports", "Nintendo", 2006, 7.7, 41.0, 29.0, 3.8, 8.5, 82.3},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sales", cell, &r); err != nil {
			t.Fatalf("set row %d: %v", i, err)
		}
	}
	p := filepath.Join(t.TempDir(), "games.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}
	return p
}

func TestLoadXLSX_SheetSelection(t *testing.T) {
	p := writeXLSXFixture(t)

	// First sheet holds notes only.
	if _, err := Load(p, 2010, 2019); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn on first sheet, got %v", err)
	}

	opt := DefaultOptions()
	opt.Sheet = "sales"
	ds, err := LoadWithOptions(p, opt)
	if err != nil {
		t.Fatalf("LoadWithOptions: %v", err)
	}
	if ds.Len() != 2 || ds.RowsRead() != 3 {
		t.Fatalf("expected 2 of 3 rows, got %d of %d", ds.Len(), ds.RowsRead())
	}
	halo := ds.Records()[0]
	if halo.Title != "Halo 4" || halo.ReleaseYear != 2012 || halo.TotalSales != 9.4 {
		t.Fatalf("unexpected first record %+v", halo)
	}
	if halo.CriticScore == nil || *halo.CriticScore != 8.7 {
		t.Fatalf("critic score not read: %+v", halo.CriticScore)
	}
	if ds.Records()[1].CriticScore != nil {
		t.Fatalf("blank critic score should be nil")
	}

	opt.Sheet = "Missing"
	_, err = LoadWithOptions(p, opt)
	if err == nil || !strings.Contains(err.Error(), "available sheets: Notes, Sales") {
		t.Fatalf("expected available sheet list, got %v", err)
	}
}

func writeSQLiteFixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "games.sqlite")
	db, err := sql.Open("sqlite", p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	stmts := []string{
		`CREATE TABLE games (title TEXT, console TEXT, genre TEXT, publisher TEXT, release_year INTEGER,
			critic_score REAL, na_sales REAL, pal_sales REAL, jp_sales REAL, other_sales REAL, total_sales REAL)`,
		`CREATE TABLE notes (body TEXT)`,
		`INSERT INTO games VALUES ('Halo 4','X360','Shooter','Microsoft',2012,8.7,6.5,2.1,0.1,0.7,9.4)`,
		`INSERT INTO games VALUES ('Knack','PS4','Action','Sony',2013,NULL,0.8,0.9,0.2,0.3,2.2)`,
		`INSERT INTO games VALUES ('Anthem','PS4','Shooter','EA',2020,NULL,0.5,0.3,0.1,0.1,1.0)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	return p
}

func TestLoadSQLite_FirstTableAndNamedTable(t *testing.T) {
	p := writeSQLiteFixture(t)

	ds, err := Load(p, 2010, 2019)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ds.Len() != 2 || ds.Excluded() != 1 {
		t.Fatalf("expected 2 kept and 1 excluded, got %d/%d", ds.Len(), ds.Excluded())
	}
	knack := ds.Records()[1]
	if knack.Console != "PS4" || knack.CriticScore != nil || knack.TotalSales != 2.2 {
		t.Fatalf("unexpected record %+v", knack)
	}

	opt := DefaultOptions()
	opt.Table = "notes"
	if _, err := LoadWithOptions(p, opt); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn for notes table, got %v", err)
	}
}
