package dataset

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "modernc.org/sqlite"
)

// sqliteRows reads every row of one table. The connection is query-only.
type sqliteRows struct {
	db     *sql.DB
	rows   *sql.Rows
	header []string
	sent   bool
}

func openSQLite(path, table string) (*sqliteRows, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA query_only = 1"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if table == "" {
		table, err = firstUserTable(db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s", quoteIdent(table)))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("query table %q: %w", table, err)
	}
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = db.Close()
		return nil, fmt.Errorf("columns of %q: %w", table, err)
	}
	return &sqliteRows{db: db, rows: rows, header: cols}, nil
}

func (s *sqliteRows) Next() ([]string, error) {
	if !s.sent {
		s.sent = true
		return s.header, nil
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	vals := make([]sql.NullString, len(s.header))
	scans := make([]any, len(vals))
	for i := range vals {
		scans[i] = &vals[i]
	}
	if err := s.rows.Scan(scans...); err != nil {
		return nil, err
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		if v.Valid {
			out[i] = v.String
		}
	}
	return out, nil
}

func (s *sqliteRows) Close() error {
	_ = s.rows.Close()
	return s.db.Close()
}

func firstUserTable(db *sql.DB) (string, error) {
	const q = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name LIMIT 1`
	var name string
	if err := db.QueryRow(q).Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("no user tables found")
		}
		return "", err
	}
	return name, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
