package synthesis

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/store"
)

// Friday 2026-10-16 09:00, week 42.
var friday = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newTestSynthesizer(t *testing.T, now time.Time) (*Synthesizer, *store.Store) {
	t.Helper()
	s := store.New(t.TempDir(), store.WithLocation(time.UTC), store.WithClock(func() time.Time { return now }))
	return New(s, []string{"hook", "cache", "timeout"}), s
}

func seedRatings(t *testing.T, s *store.Store, values ...int) {
	t.Helper()
	for i, v := range values {
		r := models.Rating{
			Timestamp: friday.Add(time.Duration(i-len(values)) * time.Hour).Format(models.RatingTimestampLayout),
			Rating:    v,
			SessionID: "s",
		}
		require.NoError(t, s.AppendRating(r))
	}
}

func TestGenerate_WritesReportOnce(t *testing.T) {
	syn, s := newTestSynthesizer(t, friday)
	seedRatings(t, s, 9, 8, 7, 4, 3)

	report, err := syn.Generate(false)
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Equal(t, 42, report.WeekNumber)
	require.Equal(t, 2026, report.Year)
	require.Equal(t, "2026-10-11", report.StartDate)
	require.Equal(t, "2026-10-17", report.EndDate)
	require.Equal(t, s.ReportPath(2026, 42), report.Path)
	require.NotNil(t, report.RatingsSummary)
	require.Equal(t, models.TrendDown, report.RatingsSummary.Trend)

	data, err := os.ReadFile(report.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), "**Week:** 2026-W42\n")
	require.Contains(t, string(data), "- **Average:** 6.2 / 10\n")
	require.Contains(t, string(data), "- **Trend:** ↓ down\n")

	again, err := syn.Generate(false)
	require.NoError(t, err)
	require.Nil(t, again)

	seedRatings(t, s, 10, 10)
	forced, err := syn.Generate(true)
	require.NoError(t, err)
	require.NotNil(t, forced)
	require.Equal(t, report.Path, forced.Path)
	require.Equal(t, 7, forced.RatingsSummary.Count)

	rewritten, err := os.ReadFile(forced.Path)
	require.NoError(t, err)
	require.NotEqual(t, string(data), string(rewritten))
	require.Contains(t, string(rewritten), "- **Count:** 7 ratings\n")
	require.Contains(t, string(rewritten), "- **Average:** 7.3 / 10\n")
	require.NotContains(t, string(rewritten), "6.2 / 10")
}

func TestGenerate_EmptyTree(t *testing.T) {
	syn, _ := newTestSynthesizer(t, friday)
	report, err := syn.Generate(false)
	require.NoError(t, err)
	require.Nil(t, report.RatingsSummary)
	require.Empty(t, report.Patterns)
	require.Empty(t, report.Recommendations)

	data, err := os.ReadFile(report.Path)
	require.NoError(t, err)
	content := string(data)
	require.Contains(t, content, "## Rating Summary\n\n*No ratings this week*\n\n## Learning Summary")
	require.Contains(t, content, "*No recurring patterns detected*")
	require.Contains(t, content, "*No specific recommendations*")
}

func TestBuild_CountsLearningsAndLowRatingNotes(t *testing.T) {
	now := friday
	s := store.New(t.TempDir(), store.WithLocation(time.UTC), store.WithClock(func() time.Time { return now }))
	syn := New(s, []string{"hook", "cache", "timeout"})

	for _, title := range []string{"hook cache", "hook timeout", "cache timeout"} {
		_, err := s.WriteLearning(store.NewLearning{Category: models.CategoryAlgorithm, Summary: title, Insight: title})
		require.NoError(t, err)
		now = now.Add(time.Second)
	}
	_, err := s.WriteLowRatingLearning(s.NewRating(2, "s", "meh"))
	require.NoError(t, err)

	report, err := syn.Build(now)
	require.NoError(t, err)
	require.Equal(t, models.LearningCounts{Algorithm: 4}, report.LearningsCount)
	require.Len(t, report.Patterns, 3)
	require.Nil(t, report.RatingsSummary)
	require.Equal(t, []string{"Many ALGORITHM learnings - consider code review practices"}, report.Recommendations)
}

func TestShouldGenerate(t *testing.T) {
	monday := time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)
	syn, s := newTestSynthesizer(t, monday)

	require.False(t, syn.ShouldGenerate(friday))
	require.True(t, syn.ShouldGenerate(monday))

	_, err := s.WriteReport(2026, WeekNumber(monday), "x")
	require.NoError(t, err)
	require.False(t, syn.ShouldGenerate(monday))
}

func TestRender_Layout(t *testing.T) {
	report := &models.WeeklyReport{
		WeekNumber: 7,
		Year:       2026,
		StartDate:  "2026-02-08",
		EndDate:    "2026-02-14",
		RatingsSummary: &models.RatingsSummary{
			Count: 4, Average: 7, Lowest: 5, LowestComment: "(no comment)", Trend: models.TrendStable,
		},
		Patterns:        []models.Pattern{{Keyword: "hook", Count: 3}},
		LearningsCount:  models.LearningCounts{System: 1, Algorithm: 2},
		Recommendations: []string{"first", "second"},
	}
	out := Render(report, time.Date(2026, 2, 16, 9, 0, 0, 0, time.UTC))

	require.True(t, strings.HasPrefix(out, "---\ntype: weekly-synthesis\nyear: 2026\nweek: 7\ngenerated: 2026-02-16T09:00:00.000Z\n---\n\n# Weekly Learning Synthesis\n"))
	require.Contains(t, out, "**Week:** 2026-W07\n**Period:** 2026-02-08 to 2026-02-14\n")
	require.Contains(t, out, "## Rating Summary\n\n\n- **Count:** 4 ratings\n- **Average:** 7 / 10\n- **Lowest:** 5 ((no comment))\n- **Trend:** → stable\n\n\n## Learning Summary")
	require.Contains(t, out, "- **SYSTEM:** 1 learnings\n- **ALGORITHM:** 2 learnings\n")
	require.Contains(t, out, "## Recurring Patterns\n\n- **hook:** appeared 3 times\n\n")
	require.Contains(t, out, "## Recommendations\n\n1. first\n2. second\n\n---\n")
	require.True(t, strings.HasSuffix(out, "*Auto-generated by PAI Learning System*\n"))
}

func TestGenerate_ReportPathMonthFollowsWeek(t *testing.T) {
	// Friday 2026-01-30 is in week 5, whose path month (January 35) is February.
	syn, s := newTestSynthesizer(t, time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC))
	report, err := syn.Generate(false)
	require.NoError(t, err)
	require.Equal(t, 5, report.WeekNumber)
	require.Equal(t, filepath.Join(s.SynthesisDir(), "2026-02", "week-05.md"), report.Path)
	require.True(t, s.ReportExists(2026, 5))

	again, err := syn.Generate(false)
	require.NoError(t, err)
	require.Nil(t, again)
}
