package synthesis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/pai/internal/models"
)

func ratingsOf(values ...int) []models.Rating {
	out := make([]models.Rating, len(values))
	for i, v := range values {
		out[i] = models.Rating{Timestamp: fmt.Sprintf("2026-10-1%dT10:00:00", i), Rating: v}
	}
	return out
}

func TestAnalyzeRatings_Empty(t *testing.T) {
	require.Nil(t, AnalyzeRatings(nil))
}

func TestAnalyzeRatings_EndToEndDownTrend(t *testing.T) {
	rs := ratingsOf(9, 8, 7, 4, 3)
	rs[4].Comment = "broke the build"

	got := AnalyzeRatings(rs)
	require.NotNil(t, got)
	require.Equal(t, 5, got.Count)
	require.InDelta(t, 6.2, got.Average, 1e-9)
	require.Equal(t, 3, got.Lowest)
	require.Equal(t, "broke the build", got.LowestComment)
	require.Equal(t, models.TrendDown, got.Trend)

	recs := Recommend(got, nil, models.LearningCounts{})
	require.Equal(t, []string{
		"Ratings are trending downward - investigate recent changes",
		`Address the low-rated issue: "broke the build"`,
	}, recs)
}

func TestAnalyzeRatings_SortsByTimestamp(t *testing.T) {
	rs := []models.Rating{
		{Timestamp: "2026-10-14T10:00:00", Rating: 7},
		{Timestamp: "2026-10-11T10:00:00", Rating: 5},
		{Timestamp: "2026-10-13T10:00:00", Rating: 7},
		{Timestamp: "2026-10-12T10:00:00", Rating: 5},
	}
	require.Equal(t, models.TrendUp, AnalyzeRatings(rs).Trend)
}

func TestAnalyzeRatings_Trend(t *testing.T) {
	require.Equal(t, models.TrendUp, AnalyzeRatings(ratingsOf(5, 5, 7, 7)).Trend)
	require.Equal(t, models.TrendStable, AnalyzeRatings(ratingsOf(5, 5, 5, 6)).Trend)
	require.Equal(t, models.TrendStable, AnalyzeRatings(ratingsOf(1, 10, 10)).Trend)
	require.Equal(t, models.TrendDown, AnalyzeRatings(ratingsOf(7, 7, 5, 5)).Trend)
}

func TestAnalyzeRatings_FirstStrictMinimumAndDefaultComment(t *testing.T) {
	rs := ratingsOf(4, 2, 2)
	rs[2].Comment = "later"
	got := AnalyzeRatings(rs)
	require.Equal(t, 2, got.Lowest)
	require.Equal(t, "(no comment)", got.LowestComment)
	require.InDelta(t, 2.7, got.Average, 1e-9)
}

func TestExtractPatterns(t *testing.T) {
	learnings := []models.Learning{
		{Title: "Hook timeout", Insight: "the hook hit a timeout"},
		{Title: "cache bug", Insight: "stale cache after timeout"},
		{Title: "Hook cache", Insight: "hook config"},
		{Title: "unrelated", Insight: "nothing here"},
	}
	got := ExtractPatterns(learnings, []string{"hook", "timeout", "cache", "config", "bug"})
	require.Equal(t, []models.Pattern{
		{Keyword: "hook", Count: 2},
		{Keyword: "timeout", Count: 2},
		{Keyword: "cache", Count: 2},
	}, got)
}

func TestExtractPatterns_CapsAtFiveSortedByCount(t *testing.T) {
	kws := []string{"a1", "a2", "a3", "a4", "a5", "a6"}
	var learnings []models.Learning
	for i := range 4 {
		text := "a1 a2 a3 a4 a5 a6"
		if i > 0 {
			text = "a6 a5"
		}
		learnings = append(learnings, models.Learning{Title: text})
	}
	got := ExtractPatterns(learnings, kws)
	require.Len(t, got, 2)
	require.Equal(t, "a5", got[0].Keyword)
	require.Equal(t, "a6", got[1].Keyword)

	for range 2 {
		learnings = append(learnings, models.Learning{Title: "a1 a2 a3 a4"})
	}
	got = ExtractPatterns(learnings, kws)
	require.Len(t, got, 5)
	require.Equal(t, []string{"a5", "a6", "a1", "a2", "a3"}, keywords(got))
}

func keywords(ps []models.Pattern) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Keyword
	}
	return out
}

func TestRecommend_OrderAndCap(t *testing.T) {
	summary := &models.RatingsSummary{Average: 4.5, Trend: models.TrendDown, Lowest: 2, LowestComment: "bad"}
	patterns := []models.Pattern{{Keyword: "hook", Count: 4}, {Keyword: "api", Count: 3}, {Keyword: "path", Count: 3}}
	recs := Recommend(summary, patterns, models.LearningCounts{System: 7, Algorithm: 1})
	require.Equal(t, []string{
		"Overall ratings are low - review recent feedback for common issues",
		"Ratings are trending downward - investigate recent changes",
		`Address the low-rated issue: "bad"`,
		"Recurring hook issues (4x) - consider creating a checklist",
		"Recurring api issues (3x) - consider creating a checklist",
	}, recs)
}

func TestRecommend_CategoryImbalance(t *testing.T) {
	require.Equal(t,
		[]string{"Many ALGORITHM learnings - consider code review practices"},
		Recommend(nil, nil, models.LearningCounts{System: 1, Algorithm: 3}))
	require.Equal(t,
		[]string{"Many SYSTEM learnings - environment setup may need documentation"},
		Recommend(nil, []models.Pattern{{Keyword: "x", Count: 2}}, models.LearningCounts{System: 3}))
	require.Empty(t, Recommend(nil, nil, models.LearningCounts{System: 2, Algorithm: 1}))
}
