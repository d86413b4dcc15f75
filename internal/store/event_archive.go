package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dotcommander/pai/internal/models"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000

	// receivedAtLayout is fixed-width so received_at sorts lexically.
	receivedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// EventArchive keeps every relayed envelope in SQLite.
type EventArchive struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventArchive wraps an opened archive database.
func NewEventArchive(db *sql.DB) *EventArchive {
	return &EventArchive{db: db, now: time.Now}
}

// OpenEventArchive opens the archive at path.
func OpenEventArchive(path string) (*EventArchive, error) {
	db, err := OpenArchiveDB(path)
	if err != nil {
		return nil, err
	}
	return NewEventArchive(db), nil
}

// Close closes the database.
func (a *EventArchive) Close() error { return a.db.Close() }

// Insert stores env and returns the archived record.
func (a *EventArchive) Insert(ctx context.Context, env models.Envelope) (models.ArchivedEvent, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return models.ArchivedEvent{}, fmt.Errorf("encode envelope: %w", err)
	}
	rec := models.ArchivedEvent{
		ID:         uuid.NewString(),
		ReceivedAt: a.now().UTC(),
		Envelope:   env,
	}

	err = RetryWithBackoff(func() error {
		_, err := a.db.ExecContext(ctx, `
			INSERT INTO events (id, source_app, session_id, hook_event_type, tool_name, agent_type, event_ts, received_at, body)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, env.SourceApp, env.SessionID, env.HookEventType, env.ToolName, env.AgentType,
			env.Timestamp, rec.ReceivedAt.Format(receivedAtLayout), string(body))
		return err
	})
	if err != nil {
		return models.ArchivedEvent{}, fmt.Errorf("failed to archive event: %w", err)
	}
	return rec, nil
}

// HistoryParams filters History.
type HistoryParams struct {
	SessionID     string
	HookEventType string
	Limit         int
}

// History returns archived events newest first.
func (a *EventArchive) History(ctx context.Context, p HistoryParams) ([]models.ArchivedEvent, error) {
	if p.Limit <= 0 {
		p.Limit = defaultHistoryLimit
	}
	if p.Limit > maxHistoryLimit {
		p.Limit = maxHistoryLimit
	}

	where := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if p.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, p.SessionID)
	}
	if p.HookEventType != "" {
		where = append(where, "hook_event_type = ?")
		args = append(args, p.HookEventType)
	}

	query := `SELECT id, received_at, body FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY event_ts DESC, received_at DESC LIMIT ?"
	args = append(args, p.Limit)

	var out []models.ArchivedEvent
	err := RetryWithBackoff(func() error {
		rows, err := a.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query archive: %w", err)
		}
		defer func() { _ = rows.Close() }()

		out = make([]models.ArchivedEvent, 0)
		for rows.Next() {
			var (
				rec        models.ArchivedEvent
				receivedAt string
				body       string
			)
			if err := rows.Scan(&rec.ID, &receivedAt, &body); err != nil {
				return fmt.Errorf("failed to scan event: %w", err)
			}
			if err := json.Unmarshal([]byte(body), &rec.Envelope); err != nil {
				return fmt.Errorf("failed to decode event %s: %w", rec.ID, err)
			}
			rec.ReceivedAt, _ = time.Parse(receivedAtLayout, receivedAt)
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stats counts archived events overall and per hook event type.
func (a *EventArchive) Stats(ctx context.Context) (models.EventStats, error) {
	stats := models.EventStats{ByHookEventType: map[string]int{}}
	err := RetryWithBackoff(func() error {
		if err := a.db.QueryRowContext(ctx,
			`SELECT COUNT(*), COUNT(DISTINCT session_id) FROM events`,
		).Scan(&stats.Total, &stats.DistinctSessions); err != nil {
			return fmt.Errorf("failed to count events: %w", err)
		}

		rows, err := a.db.QueryContext(ctx, `SELECT hook_event_type, COUNT(*) FROM events GROUP BY hook_event_type`)
		if err != nil {
			return fmt.Errorf("failed to group events: %w", err)
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var kind string
			var n int
			if err := rows.Scan(&kind, &n); err != nil {
				return fmt.Errorf("failed to scan event count: %w", err)
			}
			stats.ByHookEventType[kind] = n
		}
		return rows.Err()
	})
	if err != nil {
		return models.EventStats{}, err
	}
	return stats, nil
}
