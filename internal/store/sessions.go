package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dotcommander/pai/internal/models"
)

const maxSessionRunes = 5000

// WriteSessionSummary records a non-learning response under history/sessions.
func (s *Store) WriteSessionSummary(sessionID, summary, response string) (string, error) {
	now := s.Now()
	name := fmt.Sprintf("%s_SESSION_%s.md", fileStamp(now), Slug(summary))
	path := filepath.Join(s.SessionsDir(), now.Format(models.MonthLayout), name)

	var b strings.Builder
	fmt.Fprintf(&b, "---\ncapture_type: %s\ntimestamp: %s\nsession_id: %s\nexecutor: main\n---\n\n",
		models.CaptureSession, now.Format(models.DocumentTimestampLayout), orUnknown(sessionID))
	fmt.Fprintf(&b, "# SESSION: %s\n\n", summary)
	fmt.Fprintf(&b, "%s\n\n", truncateRunes(response, maxSessionRunes))
	b.WriteString("---\n\n*Captured by PAI History System*\n")

	if err := writeNewFile(path, b.String()); err != nil {
		return "", err
	}
	return path, nil
}

// RecentSessions returns up to limit session documents from the two newest
// month partitions, most recently modified first.
func (s *Store) RecentSessions(limit int) ([]models.SessionFile, error) {
	months, err := monthDirs(s.SessionsDir())
	if err != nil {
		return nil, err
	}
	if len(months) > recentPartitions {
		months = months[:recentPartitions]
	}

	var sessions []models.SessionFile
	for _, month := range months {
		files, err := markdownFiles(filepath.Join(s.SessionsDir(), month))
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			sessions = append(sessions, models.SessionFile{
				RelPath: month + "/" + filepath.Base(path),
				ModTime: info.ModTime(),
			})
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ModTime.After(sessions[j].ModTime)
	})
	if limit >= 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// LoadActiveWork reads memory/state/active-work.json. It returns nil when the
// file is missing, malformed, or has no current task.
func (s *Store) LoadActiveWork() *models.ActiveWork {
	data, err := os.ReadFile(s.memoryDir("state", "active-work.json"))
	if err != nil {
		return nil
	}
	var w models.ActiveWork
	if err := json.Unmarshal(data, &w); err != nil {
		return nil
	}
	if w.CurrentTask == "" {
		return nil
	}
	return &w
}

// CoreSkill returns the core skill document. found is false when it does not exist.
func (s *Store) CoreSkill() (content string, found bool, err error) {
	data, err := os.ReadFile(s.CoreSkillPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read core skill: %w", err)
	}
	return string(data), true, nil
}
