package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/pai/internal/models"
)

const (
	maxFullContextRunes = 3000
	recentPartitions    = 2
	untitled            = "Untitled"
)

var (
	monthDirPattern    = regexp.MustCompile(`^\d{4}-\d{2}$`)
	learningTitleRegex = regexp.MustCompile(`(?m)^#\s*Learning:\s*(.+)$`)
	yamlFrontMatter    = frontmatter.NewFormat("---", "---", yaml.Unmarshal)
)

// NewLearning is a learning about to be written.
type NewLearning struct {
	Category  models.Category
	SessionID string
	Summary   string
	Insight   string
	Response  string
}

type learningFrontMatter struct {
	CaptureType string `yaml:"capture_type"`
	Category    string `yaml:"category"`
	Timestamp   string `yaml:"timestamp"`
	SessionID   string `yaml:"session_id"`
	Rating      *int   `yaml:"rating"`
}

// WriteLearning writes a learning document and returns its path.
func (s *Store) WriteLearning(l NewLearning) (string, error) {
	if !l.Category.Valid() {
		return "", fmt.Errorf("invalid learning category %q", l.Category)
	}
	sessionID := orUnknown(l.SessionID)
	now := s.Now()

	name := fmt.Sprintf("%s_LEARNING_%s.md", fileStamp(now), Slug(l.Summary))
	path := filepath.Join(s.LearningDir(), string(l.Category), now.Format(models.MonthLayout), name)

	var b strings.Builder
	fmt.Fprintf(&b, "---\ncapture_type: %s\ncategory: %s\ntimestamp: %s\nsession_id: %s\n---\n\n",
		models.CaptureLearning, l.Category, now.Format(models.DocumentTimestampLayout), sessionID)
	fmt.Fprintf(&b, "# Learning: %s\n\n", l.Summary)
	fmt.Fprintf(&b, "**Date:** %s\n**Category:** %s\n**Session:** %s\n\n", now.Format(models.DateLayout), l.Category, sessionID)
	fmt.Fprintf(&b, "## Insight\n\n%s\n\n", l.Insight)
	fmt.Fprintf(&b, "## Full Context\n\n%s\n\n", truncateRunes(l.Response, maxFullContextRunes))
	b.WriteString("---\n\n*Auto-captured by PAI Learning System*\n")

	if err := writeNewFile(path, b.String()); err != nil {
		return "", err
	}
	return path, nil
}

// WriteLowRatingLearning files an ALGORITHM improvement note for a rating below 6.
func (s *Store) WriteLowRatingLearning(r models.Rating) (string, error) {
	now := s.Now()
	name := fmt.Sprintf("%s_RATING_%d-needs-improvement.md", fileStamp(now), r.Rating)
	path := filepath.Join(s.LearningDir(), string(models.CategoryAlgorithm), now.Format(models.MonthLayout), name)

	comment := r.Comment
	if comment == "" {
		comment = "(No comment provided)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "---\ncapture_type: %s\ntimestamp: %s\nsession_id: %s\nrating: %d\n---\n\n",
		models.CaptureLowRating, r.Timestamp, orUnknown(r.SessionID), r.Rating)
	fmt.Fprintf(&b, "# Low Rating Alert: %d/10\n\n", r.Rating)
	fmt.Fprintf(&b, "## User Feedback\n%s\n\n", comment)
	b.WriteString("## Action Required\nReview the recent work in this session to identify what went wrong.\n\n")
	b.WriteString("---\n\n*Auto-captured by ExplicitRatingCapture hook*\n")

	if err := writeNewFile(path, b.String()); err != nil {
		return "", err
	}
	return path, nil
}

// LoadLearnings returns learnings from the last days days.
func (s *Store) LoadLearnings(days int) ([]models.Learning, error) {
	return s.LoadLearningsSince(s.Now().AddDate(0, 0, -days))
}

// LoadLearningsSince scans the two newest month partitions of each category and
// returns learnings stamped at or after cutoff, newest first. Unreadable or
// front-matter-less documents are skipped.
func (s *Store) LoadLearningsSince(cutoff time.Time) ([]models.Learning, error) {
	learnings := []models.Learning{}
	for _, cat := range models.Categories {
		catDir := filepath.Join(s.LearningDir(), string(cat))
		months, err := monthDirs(catDir)
		if err != nil {
			return nil, err
		}
		if len(months) > recentPartitions {
			months = months[:recentPartitions]
		}
		for _, month := range months {
			files, err := markdownFiles(filepath.Join(catDir, month))
			if err != nil {
				return nil, err
			}
			for _, path := range files {
				l, ok := s.readLearning(path, cat)
				if !ok {
					continue
				}
				ts, err := models.ParseLocalTimestamp(l.Timestamp, s.loc)
				if err != nil || ts.Before(cutoff) {
					continue
				}
				learnings = append(learnings, l)
			}
		}
	}
	sort.SliceStable(learnings, func(i, j int) bool {
		return learnings[i].Timestamp > learnings[j].Timestamp
	})
	return learnings, nil
}

func (s *Store) readLearning(path string, cat models.Category) (models.Learning, bool) {
	content, err := os.ReadFile(path) //nolint:gosec // G304: path comes from a directory listing under root
	if err != nil {
		return models.Learning{}, false
	}
	l, err := ParseLearning(content)
	if err != nil {
		return models.Learning{}, false
	}
	l.Path = path
	l.Category = cat
	return l, true
}

// ParseLearning decodes a learning document. The category is left to the caller
// since the directory, not the front matter, is authoritative.
func ParseLearning(content []byte) (models.Learning, error) {
	var fm learningFrontMatter
	if _, err := frontmatter.MustParse(bytes.NewReader(content), &fm, yamlFrontMatter); err != nil {
		return models.Learning{}, fmt.Errorf("parse front matter: %w", err)
	}

	text := string(content)
	title := untitled
	if m := learningTitleRegex.FindStringSubmatch(text); m != nil {
		title = strings.TrimSpace(m[1])
	}

	captureType := models.CaptureType(fm.CaptureType)
	if captureType == "" {
		captureType = models.CaptureLearning
	}

	return models.Learning{
		CaptureType: captureType,
		Timestamp:   strings.TrimSpace(fm.Timestamp),
		SessionID:   fm.SessionID,
		Title:       title,
		Insight:     insightSection(text),
		FullContent: text,
		Rating:      fm.Rating,
	}, nil
}

// insightSection returns the body between "## Insight\n\n" and the next "\n##".
func insightSection(text string) string {
	const marker = "## Insight\n\n"
	start := strings.Index(text, marker)
	if start < 0 {
		return ""
	}
	body := text[start+len(marker):]
	if end := strings.Index(body, "\n##"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// monthDirs lists YYYY-MM subdirectories of dir, newest first.
func monthDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var months []string
	for _, e := range entries {
		if e.IsDir() && monthDirPattern.MatchString(e.Name()) {
			months = append(months, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months, nil
}

// markdownFiles lists .md files in dir, names sorted descending.
func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

func orUnknown(sessionID string) string {
	if sessionID == "" {
		return models.UnknownSession
	}
	return sessionID
}
