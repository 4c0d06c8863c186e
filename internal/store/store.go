// Package store keeps a history of analysis reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/seenimoa/nivesh/internal/analytics"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DefaultListLimit caps ListReports when Filter.Limit is zero.
const DefaultListLimit = 20

// ErrNotFound is returned by GetReport for unknown IDs.
var ErrNotFound = errors.New("store: report not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	identifier   TEXT NOT NULL,
	asset_class  TEXT NOT NULL,
	saved_at     INTEGER NOT NULL,
	body         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_identifier ON reports(identifier, saved_at);
`

// Record is a stored report.
type Record struct {
	ID      string            `json:"id"`
	SavedAt time.Time         `json:"saved_at"`
	Report  *analytics.Report `json:"report"`
}

// Filter narrows ListReports.
type Filter struct {
	Identifier string // exact match, case-insensitive
	AssetClass string
	Limit      int
}

// Store is a SQLite-backed report history. Reports are stored as the JSON
// they were returned with and never modified.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// one connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SaveReport stores r and returns its new ID.
func (s *Store) SaveReport(ctx context.Context, r *analytics.Report) (string, error) {
	if r == nil {
		return "", errors.New("store: nil report")
	}
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("store: encode report: %w", err)
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports(id, identifier, asset_class, saved_at, body) VALUES(?,?,?,?,?)`,
		id, strings.ToUpper(r.Identifier), r.AssetClass.String(), s.now().UnixNano(), string(body))
	if err != nil {
		return "", fmt.Errorf("store: save report: %w", err)
	}
	return id, nil
}

// GetReport loads the report with id.
func (s *Store) GetReport(ctx context.Context, id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, saved_at, body FROM reports WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// ListReports returns matching reports, newest first.
func (s *Store) ListReports(ctx context.Context, f Filter) ([]Record, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	query := `SELECT id, saved_at, body FROM reports`
	var where []string
	var args []any
	if f.Identifier != "" {
		where = append(where, "identifier = ?")
		args = append(args, strings.ToUpper(strings.TrimSpace(f.Identifier)))
	}
	if f.AssetClass != "" {
		where = append(where, "asset_class = ?")
		args = append(args, f.AssetClass)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY saved_at DESC, rowid DESC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list reports: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var (
		rec     Record
		savedAt int64
		body    string
	)
	if err := sc.Scan(&rec.ID, &savedAt, &body); err != nil {
		return nil, err
	}
	rec.SavedAt = time.Unix(0, savedAt)
	rec.Report = new(analytics.Report)
	if err := json.Unmarshal([]byte(body), rec.Report); err != nil {
		return nil, fmt.Errorf("store: decode report %s: %w", rec.ID, err)
	}
	return &rec, nil
}
