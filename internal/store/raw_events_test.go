package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/pai/internal/models"
)

func TestAppendRawEvent_DailyFile(t *testing.T) {
	now := time.Date(2026, 10, 14, 23, 30, 0, 0, testZone)
	s := newTestStore(t, now)

	ev := s.NewHookEvent("kiro", "s1", models.HookEventPreToolUse, map[string]any{"tool_name": "Bash"})
	require.Equal(t, now.UnixMilli(), ev.Timestamp)
	require.Equal(t, "2026-10-14 23:30:00", ev.TimestampLocal)

	path, err := s.AppendRawEvent(ev)
	require.NoError(t, err)
	require.Equal(t,
		filepath.Join(s.Root(), "memory", "history", "raw-outputs", "2026-10", "2026-10-14_all-events.jsonl"),
		path)

	_, err = s.AppendRawEvent(ev)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var decoded models.HookEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &decoded))
	require.Equal(t, "Bash", decoded.Payload["tool_name"])
	require.Equal(t, "kiro", decoded.SourceApp)
}
