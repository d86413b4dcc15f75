package capture

import (
	"regexp"
	"strings"

	"github.com/dotcommander/pai/internal/models"
)

const (
	maxSummaryRunes = 100
	maxInsightRunes = 500

	// DefaultSummary names a response with no usable headline.
	DefaultSummary = "work-session"
)

var (
	summaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)🎯\s*COMPLETED[:\s]*(.+?)(?:\n|$)`),
		regexp.MustCompile(`(?i)📋\s*SUMMARY[:\s]*(.+?)(?:\n|$)`),
		regexp.MustCompile(`(?i)(?:learned|discovered|realized|fixed)[:\s]*(.+?)(?:\n|$)`),
	}

	insightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:the )?(?:problem|issue|bug) was[:\s]+(.+?)(?:\n|$)`),
		regexp.MustCompile(`(?i)(?:root cause|cause)[:\s]+(.+?)(?:\n|$)`),
		regexp.MustCompile(`(?i)(?:solution|fix|workaround)[:\s]+(.+?)(?:\n|$)`),
		regexp.MustCompile(`(?i)(?:learned|discovered|realized)[:\s]+(.+?)(?:\n|$)`),
	}
)

// Classifier decides whether a response carries a learning and files it by category.
type Classifier struct {
	vocab Vocabulary
}

// NewClassifier returns a Classifier over vocab.
func NewClassifier(vocab Vocabulary) *Classifier {
	return &Classifier{vocab: vocab}
}

// IsLearning reports whether at least two distinct learning indicators occur in text.
func (c *Classifier) IsLearning(text string) bool {
	return CountMatches(text, c.vocab.LearningIndicators) >= 2
}

// Categorize scores text against the SYSTEM and ALGORITHM vocabularies.
// SYSTEM needs a strict majority; ties go to ALGORITHM. ok is false when neither scores.
func (c *Classifier) Categorize(text string) (cat models.Category, ok bool) {
	system := CountMatches(text, c.vocab.System)
	algorithm := CountMatches(text, c.vocab.Algorithm)
	if system == 0 && algorithm == 0 {
		return "", false
	}
	if system > algorithm {
		return models.CategorySystem, true
	}
	return models.CategoryAlgorithm, true
}

// Summary picks a short headline for response.
func Summary(response string) string {
	for _, re := range summaryPatterns {
		if m := re.FindStringSubmatch(response); m != nil {
			return Truncate(strings.TrimSpace(m[1]), maxSummaryRunes)
		}
	}
	for line := range strings.SplitSeq(response, "\n") {
		if trimmed := strings.TrimSpace(line); len(trimmed) > 10 {
			return Truncate(trimmed, maxSummaryRunes)
		}
	}
	return DefaultSummary
}

// Insight extracts the key takeaway of response.
func Insight(response string) string {
	for _, re := range insightPatterns {
		m := re.FindStringSubmatch(response)
		if m != nil && len(m[1]) > 20 {
			return Truncate(strings.TrimSpace(m[1]), maxInsightRunes)
		}
	}
	for para := range strings.SplitSeq(response, "\n\n") {
		if trimmed := strings.TrimSpace(para); len(trimmed) > 50 {
			return Truncate(trimmed, maxInsightRunes)
		}
	}
	return Truncate(response, maxInsightRunes)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
