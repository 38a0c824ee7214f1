package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.YearMin != 2010 || c.YearMax != 2019 || c.TopN != 10 || c.HTTPAddr != "127.0.0.1:8080" {
		t.Fatalf("unexpected defaults %+v", c)
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("data_path: /data/games.xlsx\nyear_min: 2012\nsheet: Sales\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("VGMARKET_YEAR_MIN", "2013")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DataPath != "/data/games.xlsx" || c.Sheet != "Sales" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.YearMin != 2013 {
		t.Fatalf("env should override file, got year_min %d", c.YearMin)
	}
}

func TestLoad_InvalidRange(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("year_min: 2020\nyear_max: 2010\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for inverted year range")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := &Global{DataPath: "games.sqlite", Table: "sales", YearMin: 2011, YearMax: 2018, TopN: 5, HTTPAddr: ":9090"}
	if err := Save(in, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.DataPath != in.DataPath || out.Table != in.Table || out.YearMin != 2011 || out.TopN != 5 || out.HTTPAddr != ":9090" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestDelim(t *testing.T) {
	cases := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", 0, false},
		{";", ';', false},
		{"tab", '\t', false},
		{`\t`, '\t', false},
		{"::", 0, true},
	}
	for _, tc := range cases {
		got, err := (&Global{Delimiter: tc.in}).Delim()
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("Delim(%q) = %q, %v", tc.in, got, err)
		}
	}
}
