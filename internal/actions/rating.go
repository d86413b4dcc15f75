package actions

import (
	"fmt"

	"github.com/dotcommander/pai/internal/capture"
	"github.com/dotcommander/pai/internal/store"
)

// lowRatingThreshold is the rating below which an improvement note is filed.
const lowRatingThreshold = 6

// CaptureRating records prompt as a rating when it parses as one.
func CaptureRating(s *store.Store, unitWords []string, sessionID, prompt string) Outcome {
	if prompt == "" {
		return skipped("empty prompt")
	}
	parsed, ok := capture.ParseRating(prompt, unitWords)
	if !ok {
		return skipped("not a rating")
	}

	r := s.NewRating(parsed.Rating, sessionID, parsed.Comment)
	if err := s.AppendRating(r); err != nil {
		return failed("append rating", err)
	}

	out := Outcome{Status: StatusCaptured, Path: s.RatingsPath()}
	if r.Rating < lowRatingThreshold {
		if _, err := s.WriteLowRatingLearning(r); err != nil {
			out.Err = fmt.Errorf("low-rating note: %w", err)
		} else {
			out.Feedback = append(out.Feedback, fmt.Sprintf("⚠️ Low rating (%d/10) captured to LEARNING/ALGORITHM/", r.Rating))
		}
	}
	out.Feedback = append(out.Feedback, ratingFeedback(r.Rating, r.Comment))
	return out
}

func ratingFeedback(rating int, comment string) string {
	emoji := "📝"
	switch {
	case rating >= 8:
		emoji = "🌟"
	case rating >= 6:
		emoji = "👍"
	}
	line := fmt.Sprintf("%s Rating %d/10 recorded", emoji, rating)
	if comment != "" {
		line += ": " + comment
	}
	return line
}
