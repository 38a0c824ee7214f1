package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFile_CreatesParents(t *testing.T) {
	p := filepath.Join(t.TempDir(), "reports", "overview.md")
	if err := SafeWriteFile(p, []byte("[MARKET OVERVIEW]\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "[MARKET OVERVIEW]\n" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"games": 3})
	if err != nil {
		t.Fatalf("PrettyJSON: %v", err)
	}
	if string(b) != "{\n  \"games\": 3\n}" {
		t.Fatalf("unexpected json %q", b)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := ExpandPath("~/data/games.csv")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "data", "games.csv") {
		t.Fatalf("ExpandPath = %s", got)
	}
	if got, _ := ExpandPath("rel/games.csv"); got != "rel/games.csv" {
		t.Fatalf("relative path changed: %s", got)
	}
}
