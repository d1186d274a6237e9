package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Activity kinds recorded by the console.
const (
	ActivityServiceCreated  = "service.created"
	ActivityServiceUpdated  = "service.updated"
	ActivityServiceDeleted  = "service.deleted"
	ActivityWebhookTested   = "webhook.tested"
	ActivityIncidentIngest  = "incident.ingested"
	ActivityIncidentDeleted = "incident.deleted"
)

// Activity is one entry in the console's activity log.
type Activity struct {
	ID        string                 `json:"id"`
	Kind      string                 `json:"kind"`
	Subject   string                 `json:"subject,omitempty"` // incident id, service id or webhook key
	Actor     string                 `json:"actor"`
	Details   map[string]interface{} `json:"details"`
	Timestamp time.Time              `json:"timestamp"`
}

// RecordActivity appends an entry to the activity log
func (s *Store) RecordActivity(ctx context.Context, a Activity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	if a.Actor == "" {
		a.Actor = "console"
	}
	if a.Details == nil {
		a.Details = map[string]interface{}{}
	}

	detailsJSON, err := json.Marshal(a.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal activity details: %w", err)
	}

	query := `INSERT INTO activity (id, kind, subject, actor, details, timestamp) VALUES (?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		a.ID, a.Kind, a.Subject, a.Actor, string(detailsJSON), a.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivity returns the most recent entries first; limit <= 0 returns all.
func (s *Store) ListActivity(ctx context.Context, limit int) ([]Activity, error) {
	query := `SELECT id, kind, subject, actor, details, timestamp FROM activity ORDER BY timestamp DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var entries []Activity
	for rows.Next() {
		var a Activity
		var subject *string
		var detailsJSON string
		var ts int64

		if err := rows.Scan(&a.ID, &a.Kind, &subject, &a.Actor, &detailsJSON, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Timestamp = time.Unix(0, ts)
		if subject != nil {
			a.Subject = *subject
		}
		if err := json.Unmarshal([]byte(detailsJSON), &a.Details); err != nil {
			a.Details = map[string]interface{}{"raw": detailsJSON}
		}
		entries = append(entries, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}
	return entries, nil
}
