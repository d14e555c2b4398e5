// Package relstore provides the embedded relational engine the
// transformation ruleset executes against. Every run gets a private
// in-memory SQLite database that is discarded when the run ends.
package relstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps a single in-memory SQLite database.
type Store struct {
	db *sql.DB
}

// OpenMemory creates a fresh in-memory database. The connection pool is
// pinned to one connection: each new connection to :memory: would see its
// own empty database, not the one the raw data was loaded into.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	return &Store{db: db}, nil
}

// Close releases the database and everything in it.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

// quoteIdent makes an identifier safe to splice into DDL. Column names come
// from CSV headers, so they cannot be bound as parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTable creates a table with the given columns, all with NUMERIC
// affinity. The feed arrives as text; NUMERIC affinity stores numeric-looking
// values as numbers so rules compare yardage and downs numerically, while
// team codes and dates stay text.
func (s *Store) CreateTable(ctx context.Context, name string, columns []string) error {
	ctx = ensureContext(ctx)
	if len(columns) == 0 {
		return fmt.Errorf("create table %s: no columns", name)
	}
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " NUMERIC"
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	return nil
}

// InsertRows bulk-loads rows into a table inside one transaction. Values for
// which missing reports true are stored as NULL. Row order is preserved, so
// rowid reflects the original feed order.
func (s *Store) InsertRows(ctx context.Context, name string, columns []string, rows [][]string, missing func(string) bool) (err error) {
	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert into %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	placeholders := strings.Repeat("?, ", len(columns))
	placeholders = strings.TrimSuffix(placeholders, ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", name, err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return fmt.Errorf("insert into %s: row %d has %d values, want %d", name, i+1, len(row), len(columns))
		}
		for j, value := range row {
			if missing != nil && missing(value) {
				args[j] = nil
			} else {
				args[j] = value
			}
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %s: row %d: %w", name, i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert into %s: %w", name, err)
	}
	return nil
}

// Exec runs a single SQL statement.
func (s *Store) Exec(ctx context.Context, stmt string, args ...any) error {
	ctx = ensureContext(ctx)
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return err
	}
	return nil
}

// TableExists reports whether a table (not a view) with the given name
// exists in the database.
func (s *Store) TableExists(ctx context.Context, name string) (bool, error) {
	ctx = ensureContext(ctx)
	var found string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}
	return true, nil
}

// QueryTable returns the full contents of a table in its stored row order,
// along with its column names. Values keep the types SQLite assigned them.
func (s *Store) QueryTable(ctx context.Context, name string) ([]string, [][]any, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", quoteIdent(name)))
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("query %s: columns: %w", name, err)
	}

	var result [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		scans := make([]any, len(columns))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, nil, fmt.Errorf("query %s: scan row %d: %w", name, len(result)+1, err)
		}
		for i, v := range values {
			// Drivers may reuse byte buffers between rows.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result = append(result, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("query %s: %w", name, err)
	}
	return columns, result, nil
}

// CountRows returns the number of rows in a table.
func (s *Store) CountRows(ctx context.Context, name string) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name))).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", name, err)
	}
	return count, nil
}
