package capture

import (
	"regexp"
	"strconv"
	"strings"
)

var ratingPattern = regexp.MustCompile(`^(10|[1-9])(?:\s*[-:/]\s*|\s+)?(.*)$`)

// ParsedRating is an accepted explicit rating.
type ParsedRating struct {
	Rating  int
	Comment string
}

// ParseRating reads an explicit 1-10 rating at the very start of text.
// Valid forms: "7", "8 - good work", "6: needs improvement", "9/10".
// Text whose comment opens with a unit word ("7 files changed") is not a rating.
func ParseRating(text string, unitWords []string) (ParsedRating, bool) {
	trimmed := strings.TrimSpace(text)

	m := ratingPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return ParsedRating{}, false
	}
	number := m[1]

	// "11", "100": the number keeps going, so it is not a 1-10 rating.
	if rest := trimmed[len(number):]; rest != "" && rest[0] >= '0' && rest[0] <= '9' {
		return ParsedRating{}, false
	}

	comment := strings.TrimSpace(m[2])
	lower := strings.ToLower(comment)
	for _, unit := range unitWords {
		if strings.HasPrefix(lower, strings.ToLower(unit)) {
			return ParsedRating{}, false
		}
	}

	if comment == "" && trimmed != number {
		return ParsedRating{}, false
	}

	rating, err := strconv.Atoi(number)
	if err != nil {
		return ParsedRating{}, false
	}
	return ParsedRating{Rating: rating, Comment: comment}, true
}
