package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Ashfaaq98/signalroot-console/internal/model"
)

// ErrNotFound is returned when a row with the requested id does not exist.
var ErrNotFound = errors.New("not found")

// Store represents the SQLite storage implementation
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store instance
func NewStore(dbPath string) (*Store, error) {
	// Ensure target directory exists (e.g., ./data)
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open(sqliteDriver, dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate performs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS incidents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			service TEXT NOT NULL,
			severity TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			resolved_at INTEGER,
			raw_json TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS activity (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			subject TEXT,
			actor TEXT NOT NULL,
			details TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_incidents_started_at ON incidents(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_status ON incidents(status)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_severity ON incidents(severity)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_services_name ON services(name)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_kind ON activity(kind)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// Reset deletes every row from every table.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, table := range []string{"incidents", "services", "activity"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// UpsertIncident validates and saves an incident, replacing any row with the
// same id. The full record is kept as JSON; the indexed columns mirror it.
func (s *Store) UpsertIncident(ctx context.Context, inc model.Incident) error {
	if err := inc.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(inc)
	if err != nil {
		return fmt.Errorf("failed to marshal incident: %w", err)
	}

	var resolvedAt sql.NullInt64
	if inc.ResolvedAt != nil {
		resolvedAt = sql.NullInt64{Int64: inc.ResolvedAt.Unix(), Valid: true}
	}
	now := time.Now().Unix()

	query := `INSERT INTO incidents (
		id, title, service, severity, status, started_at, resolved_at, raw_json, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		service = excluded.service,
		severity = excluded.severity,
		status = excluded.status,
		started_at = excluded.started_at,
		resolved_at = excluded.resolved_at,
		raw_json = excluded.raw_json,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		inc.ID, inc.Title, inc.Service, inc.Severity, inc.Status,
		inc.StartedAt.Unix(), resolvedAt, string(raw), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save incident %s: %w", inc.ID, err)
	}
	return nil
}

// GetIncident returns one incident by id.
func (s *Store) GetIncident(ctx context.Context, id string) (model.Incident, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT raw_json FROM incidents WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Incident{}, fmt.Errorf("incident %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Incident{}, fmt.Errorf("failed to query incident %s: %w", id, err)
	}
	var inc model.Incident
	if err := json.Unmarshal([]byte(raw), &inc); err != nil {
		return model.Incident{}, fmt.Errorf("failed to decode incident %s: %w", id, err)
	}
	return inc, nil
}

// ListIncidents returns all incidents, newest first.
func (s *Store) ListIncidents(ctx context.Context) ([]model.Incident, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, raw_json FROM incidents ORDER BY started_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []model.Incident
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		var inc model.Incident
		if err := json.Unmarshal([]byte(raw), &inc); err != nil {
			return nil, fmt.Errorf("failed to decode incident %s: %w", id, err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}
	return incidents, nil
}

// DeleteIncident removes an incident.
func (s *Store) DeleteIncident(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM incidents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident %s: %w", id, err)
	}
	return expectOne(res, "incident", id)
}

// CountIncidents returns the number of stored incidents.
func (s *Store) CountIncidents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM incidents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return n, nil
}

func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
