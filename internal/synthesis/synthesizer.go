package synthesis

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/store"
)

// windowDays is the trailing window analyzed by a synthesis run.
const windowDays = 7

// Synthesizer builds weekly reports from a signal store.
type Synthesizer struct {
	store    *store.Store
	keywords []string
}

// New returns a Synthesizer counting the given pattern keywords.
func New(s *store.Store, keywords []string) *Synthesizer {
	return &Synthesizer{store: s, keywords: keywords}
}

// Build analyzes the trailing seven days without writing anything.
// The report is labeled with the week containing now.
func (s *Synthesizer) Build(now time.Time) (*models.WeeklyReport, error) {
	now = now.In(s.store.Location())
	year, week := now.Year(), WeekNumber(now)

	ratings, err := s.store.LoadRatingsSince(now.AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	learnings, err := s.store.LoadLearningsSince(now.AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, fmt.Errorf("load learnings: %w", err)
	}

	summary := AnalyzeRatings(ratings)
	patterns := ExtractPatterns(learnings, s.keywords)
	counts := CountLearnings(learnings)
	start, end := WeekDateRange(year, week, s.store.Location())

	return &models.WeeklyReport{
		WeekNumber:      week,
		Year:            year,
		StartDate:       formatDate(start),
		EndDate:         formatDate(end),
		RatingsSummary:  summary,
		Patterns:        patterns,
		LearningsCount:  counts,
		Recommendations: Recommend(summary, patterns, counts),
	}, nil
}

// Generate writes this week's report. Unless force is set it returns (nil, nil)
// when the report already exists.
func (s *Synthesizer) Generate(force bool) (*models.WeeklyReport, error) {
	now := s.store.Now()
	year, week := now.Year(), WeekNumber(now)

	if !force && s.store.ReportExists(year, week) {
		slog.Default().Debug("weekly report already exists", "year", year, "week", week)
		return nil, nil
	}

	report, err := s.Build(now)
	if err != nil {
		return nil, err
	}

	path, err := s.store.WriteReport(report.Year, report.WeekNumber, Render(report, now))
	if err != nil {
		return nil, err
	}
	report.Path = path
	return report, nil
}

// ShouldGenerate reports whether now is a Monday whose week has no report yet.
func (s *Synthesizer) ShouldGenerate(now time.Time) bool {
	now = now.In(s.store.Location())
	if now.Weekday() != time.Monday {
		return false
	}
	return !s.store.ReportExists(now.Year(), WeekNumber(now))
}
