package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteSessionSummary(t *testing.T) {
	s := newTestStore(t, time.Date(2026, 10, 14, 9, 0, 0, 0, testZone))

	path, err := s.WriteSessionSummary("", "Quick chat", strings.Repeat("r", 6000))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(s.SessionsDir(), "2026-10", "20261014T140000_SESSION_quick-chat.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "capture_type: SESSION\n")
	require.Contains(t, content, "session_id: unknown\n")
	require.Contains(t, content, "executor: main\n")
	require.Contains(t, content, "# SESSION: Quick chat\n")
	require.Contains(t, content, "\n\n"+strings.Repeat("r", 5000)+"\n\n---")
}

func TestRecentSessions_NewestTwoPartitionsByModTime(t *testing.T) {
	s := newTestStore(t, time.Now())
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	files := []struct {
		rel string
		age time.Duration
	}{
		{"2026-10/a.md", 3 * time.Hour},
		{"2026-10/b.md", 1 * time.Hour},
		{"2026-09/c.md", 2 * time.Hour},
		{"2026-09/d.md", 5 * time.Hour},
		{"2026-08/e.md", 0},
	}
	for _, f := range files {
		path := filepath.Join(s.SessionsDir(), filepath.FromSlash(f.rel))
		writeFile(t, path, "x")
		mt := base.Add(-f.age)
		require.NoError(t, os.Chtimes(path, mt, mt))
	}

	got, err := s.RecentSessions(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "2026-10/b.md", got[0].RelPath)
	require.Equal(t, "2026-09/c.md", got[1].RelPath)
	require.Equal(t, "2026-10/a.md", got[2].RelPath)
}

func TestRecentSessions_Missing(t *testing.T) {
	s := newTestStore(t, time.Now())
	got, err := s.RecentSessions(3)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLoadActiveWork(t *testing.T) {
	s := newTestStore(t, time.Now())
	path := filepath.Join(s.Root(), "memory", "state", "active-work.json")

	require.Nil(t, s.LoadActiveWork())

	writeFile(t, path, `{"project":"x"}`)
	require.Nil(t, s.LoadActiveWork())

	writeFile(t, path, `{broken`)
	require.Nil(t, s.LoadActiveWork())

	writeFile(t, path, `{"current_task":"ship it","project":"pai","context":["a","b"]}`)
	w := s.LoadActiveWork()
	require.NotNil(t, w)
	require.Equal(t, "ship it", w.CurrentTask)
	require.Equal(t, []string{"a", "b"}, w.Context)
}

func TestCoreSkill(t *testing.T) {
	s := newTestStore(t, time.Now())

	_, found, err := s.CoreSkill()
	require.NoError(t, err)
	require.False(t, found)

	writeFile(t, s.CoreSkillPath(), "# CORE\n")
	content, found, err := s.CoreSkill()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "# CORE\n", content)
}
