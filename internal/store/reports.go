package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReportPath locates the report of (year, week). The month partition is the
// month containing January week*7 of that year.
func (s *Store) ReportPath(year, week int) string {
	month := time.Date(year, time.January, week*7, 0, 0, 0, 0, time.UTC).Format("2006-01")
	return filepath.Join(s.SynthesisDir(), month, fmt.Sprintf("week-%02d.md", week))
}

// ReportExists reports whether the (year, week) report has been written.
func (s *Store) ReportExists(year, week int) bool {
	_, err := os.Stat(s.ReportPath(year, week))
	return err == nil
}

// WriteReport writes the rendered report, replacing an existing one.
func (s *Store) WriteReport(year, week int, content string) (string, error) {
	path := s.ReportPath(year, week)
	if err := ensureParent(path); err != nil {
		return "", fmt.Errorf("create synthesis dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), filePerm); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// LatestReport returns the newest weekly report. found is false when none exists.
func (s *Store) LatestReport() (path, content string, found bool, err error) {
	months, err := monthDirs(s.SynthesisDir())
	if err != nil {
		return "", "", false, err
	}
	for _, month := range months {
		dir := filepath.Join(s.SynthesisDir(), month)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", "", false, fmt.Errorf("list %s: %w", dir, err)
		}
		var weeks []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasPrefix(e.Name(), "week-") && strings.HasSuffix(e.Name(), ".md") {
				weeks = append(weeks, e.Name())
			}
		}
		if len(weeks) == 0 {
			continue
		}
		sort.Sort(sort.Reverse(sort.StringSlice(weeks)))
		path = filepath.Join(dir, weeks[0])
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a directory listing under root
		if err != nil {
			return "", "", false, fmt.Errorf("read report: %w", err)
		}
		return path, string(data), true, nil
	}
	return "", "", false, nil
}
