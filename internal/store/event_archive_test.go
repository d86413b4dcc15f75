package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/pai/internal/models"
)

func openTestArchive(t *testing.T) *EventArchive {
	t.Helper()
	a, err := OpenEventArchive(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestOpenArchiveDB_MigratesAndUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.db")
	db, err := OpenArchiveDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	require.NoError(t, db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='events'").Scan(&name))

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	require.Equal(t, "wal", mode)

	v, err := SchemaVersion(db)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)

	// Reopening is idempotent.
	db2, err := OpenArchiveDB(path)
	require.NoError(t, err)
	require.NoError(t, db2.Close())
}

func TestEventArchive_InsertHistoryStats(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	events := []models.Envelope{
		{SourceApp: "kiro", SessionID: "s1", HookEventType: models.HookEventUserPromptSubmit, Timestamp: 1000},
		{SourceApp: "kiro", SessionID: "s1", HookEventType: models.HookEventPreToolUse, Timestamp: 2000, ToolName: "Bash", ToolInput: map[string]any{"command": "ls"}},
		{SourceApp: "engineer", SessionID: "s2", HookEventType: models.HookEventPreToolUse, Timestamp: 3000, AgentType: "engineer"},
	}
	for _, e := range events {
		rec, err := a.Insert(ctx, e)
		require.NoError(t, err)
		require.NotEmpty(t, rec.ID)
	}

	all, err := a.History(ctx, HistoryParams{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, int64(3000), all[0].Timestamp)
	require.Equal(t, int64(1000), all[2].Timestamp)

	s1, err := a.History(ctx, HistoryParams{SessionID: "s1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, s1, 1)
	require.Equal(t, "Bash", s1[0].ToolName)
	require.Equal(t, map[string]any{"command": "ls"}, s1[0].ToolInput)

	stats, err := a.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 2, stats.DistinctSessions)
	require.Equal(t, 2, stats.ByHookEventType[models.HookEventPreToolUse])
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)

	calls = 0
	err = RetryWithBackoff(func() error {
		calls++
		return errors.New("UNIQUE constraint failed: events.id")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
