// Package capture turns raw prompt and response text into rating and learning signals.
// Everything here is pure: keyword tables are data passed in through Vocabulary.
package capture

import (
	"strings"

	"github.com/dotcommander/pai/internal/app"
)

// Vocabulary holds the keyword tables used by the parser, classifier and synthesis.
type Vocabulary struct {
	LearningIndicators []string
	System             []string
	Algorithm          []string
	Patterns           []string
	UnitWords          []string
}

// DefaultVocabulary returns the built-in keyword tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		LearningIndicators: []string{
			"problem", "solved", "discovered", "fixed", "learned", "realized",
			"figured out", "root cause", "debugging", "issue was", "turned out",
			"mistake", "error", "bug", "solution", "workaround", "insight",
		},
		System: []string{
			"hook", "mcp", "tool", "command", "bash", "shell", "terminal",
			"config", "configuration", "setting", "environment", "env",
			"permission", "security", "path", "directory", "file system",
			"install", "setup", "runtime", "bun", "node", "npm",
			"api key", "token", "auth", "credential",
		},
		Algorithm: []string{
			"bug", "fix", "refactor", "implement", "logic", "algorithm",
			"pattern", "architecture", "design", "approach", "method",
			"function", "class", "module", "component", "test",
			"performance", "optimization", "memory", "database", "query",
			"api", "endpoint", "request", "response", "validation",
		},
		Patterns: []string{
			"hook", "mcp", "api", "config", "permission", "path", "directory",
			"bug", "fix", "error", "validation", "async", "timeout", "memory",
			"performance", "cache", "database", "query", "auth", "token",
			"test", "type", "typescript", "import", "export", "module",
		},
		UnitWords: []string{
			"items", "files", "lines", "bytes", "kb", "mb", "gb",
			"seconds", "minutes", "hours", "days", "weeks", "months", "years",
			"times", "attempts", "tries", "errors", "warnings",
			"users", "requests", "responses", "records", "rows", "columns",
			"have", "has", "got", "found", "see", "there", "are", "is",
			"step", "steps", "phase", "phases", "version", "port",
		},
	}
}

// WithOverrides replaces every table for which o carries a non-empty list.
func (v Vocabulary) WithOverrides(o app.VocabularySettings) Vocabulary {
	pick := func(override, current []string) []string {
		if len(override) == 0 {
			return current
		}
		return override
	}
	v.LearningIndicators = pick(o.LearningIndicators, v.LearningIndicators)
	v.System = pick(o.System, v.System)
	v.Algorithm = pick(o.Algorithm, v.Algorithm)
	v.Patterns = pick(o.Patterns, v.Patterns)
	v.UnitWords = pick(o.UnitWords, v.UnitWords)
	return v
}

// ConfiguredVocabulary returns the defaults merged with config.yaml overrides.
func ConfiguredVocabulary() Vocabulary {
	return DefaultVocabulary().WithOverrides(app.Vocabularies())
}

// CountMatches returns how many distinct words occur in text, case-insensitively.
func CountMatches(text string, words []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			n++
		}
	}
	return n
}
