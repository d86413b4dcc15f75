package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotcommander/pai/internal/models"
)

// RawEventsPath is the daily event log for the current local day.
func (s *Store) RawEventsPath() string {
	now := s.Now()
	return s.memoryDir("history", "raw-outputs", now.Format(models.MonthLayout),
		now.Format(models.DateLayout)+"_all-events.jsonl")
}

// NewHookEvent stamps a raw hook event with the current time.
func (s *Store) NewHookEvent(agent, sessionID, eventType string, payload map[string]any) models.HookEvent {
	now := s.Now()
	return models.HookEvent{
		SourceApp:      agent,
		SessionID:      sessionID,
		HookEventType:  eventType,
		Payload:        payload,
		Timestamp:      now.UnixMilli(),
		TimestampLocal: now.Format(models.DocumentTimestampLayout),
	}
}

// AppendRawEvent appends ev to the daily event log and returns the log path.
func (s *Store) AppendRawEvent(ev models.HookEvent) (string, error) {
	path := s.RawEventsPath()
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return "", fmt.Errorf("create raw-outputs dir: %w", err)
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm) //nolint:gosec // G304: path is under the configured root
	if err != nil {
		return "", fmt.Errorf("open event log: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return "", fmt.Errorf("append event: %w", err)
	}
	return path, nil
}
