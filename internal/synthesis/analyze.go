package synthesis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dotcommander/pai/internal/models"
)

const (
	minTrendRatings  = 4
	trendThreshold   = 0.5
	minPatternCount  = 2
	maxPatterns      = 5
	maxRecommended   = 5
	checklistPattern = 3
	noComment        = "(no comment)"
)

// AnalyzeRatings summarizes ratings in timestamp order. It returns nil for no ratings.
func AnalyzeRatings(ratings []models.Rating) *models.RatingsSummary {
	if len(ratings) == 0 {
		return nil
	}

	sorted := make([]models.Rating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	lowest := sorted[0]
	for _, r := range sorted {
		if r.Rating < lowest.Rating {
			lowest = r
		}
	}

	comment := lowest.Comment
	if comment == "" {
		comment = noComment
	}

	return &models.RatingsSummary{
		Count:         len(sorted),
		Average:       math.Round(mean(sorted)*10) / 10,
		Lowest:        lowest.Rating,
		LowestComment: comment,
		Trend:         trend(sorted),
	}
}

// trend compares the mean of the first half with the second; the middle
// element of an odd count belongs to the second half.
func trend(sorted []models.Rating) models.Trend {
	if len(sorted) < minTrendRatings {
		return models.TrendStable
	}
	mid := len(sorted) / 2
	first, second := mean(sorted[:mid]), mean(sorted[mid:])
	switch {
	case second-first > trendThreshold:
		return models.TrendUp
	case first-second > trendThreshold:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

func mean(ratings []models.Rating) float64 {
	total := 0
	for _, r := range ratings {
		total += r.Rating
	}
	return float64(total) / float64(len(ratings))
}

// ExtractPatterns counts, per keyword, the learnings whose title and insight
// mention it. Keywords seen at least twice are returned, most frequent first,
// at most five. Equal counts keep first-seen order.
func ExtractPatterns(learnings []models.Learning, keywords []string) []models.Pattern {
	counts := map[string]int{}
	var order []string
	for _, l := range learnings {
		text := strings.ToLower(l.Title + " " + l.Insight)
		for _, kw := range keywords {
			if !strings.Contains(text, strings.ToLower(kw)) {
				continue
			}
			if _, seen := counts[kw]; !seen {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}

	patterns := make([]models.Pattern, 0, len(order))
	for _, kw := range order {
		if counts[kw] >= minPatternCount {
			patterns = append(patterns, models.Pattern{Keyword: kw, Count: counts[kw]})
		}
	}
	sort.SliceStable(patterns, func(i, j int) bool { return patterns[i].Count > patterns[j].Count })
	if len(patterns) > maxPatterns {
		patterns = patterns[:maxPatterns]
	}
	return patterns
}

// CountLearnings tallies learnings per category.
func CountLearnings(learnings []models.Learning) models.LearningCounts {
	var c models.LearningCounts
	for _, l := range learnings {
		switch l.Category {
		case models.CategorySystem:
			c.System++
		case models.CategoryAlgorithm:
			c.Algorithm++
		}
	}
	return c
}

// Recommend derives up to five action items, in a fixed rule order.
func Recommend(summary *models.RatingsSummary, patterns []models.Pattern, counts models.LearningCounts) []string {
	recs := []string{}

	if summary != nil {
		if summary.Average < 6 {
			recs = append(recs, "Overall ratings are low - review recent feedback for common issues")
		}
		if summary.Trend == models.TrendDown {
			recs = append(recs, "Ratings are trending downward - investigate recent changes")
		}
		if summary.Lowest < 5 {
			recs = append(recs, fmt.Sprintf(`Address the low-rated issue: "%s"`, summary.LowestComment))
		}
	}

	top := patterns
	if len(top) > 3 {
		top = top[:3]
	}
	for _, p := range top {
		if p.Count >= checklistPattern {
			recs = append(recs, fmt.Sprintf("Recurring %s issues (%dx) - consider creating a checklist", p.Keyword, p.Count))
		}
	}

	if counts.System > counts.Algorithm*2 {
		recs = append(recs, "Many SYSTEM learnings - environment setup may need documentation")
	}
	if counts.Algorithm > counts.System*2 {
		recs = append(recs, "Many ALGORITHM learnings - consider code review practices")
	}

	if len(recs) > maxRecommended {
		recs = recs[:maxRecommended]
	}
	return recs
}
