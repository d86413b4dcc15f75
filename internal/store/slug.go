package store

import (
	"regexp"
	"strings"
	"time"
)

const maxSlugLen = 60

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s, collapses non-alphanumeric runs to "-" and caps it at 60 bytes.
func Slug(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return slug
}

// fileStamp is the UTC compact timestamp used as a document name prefix.
func fileStamp(t time.Time) string {
	return t.UTC().Format("20060102T150405")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
