// Package store persists signals under the pai root directory and archives
// relayed events in SQLite.
//
// Layout below the root:
//
//	memory/LEARNING/SIGNALS/ratings.jsonl
//	memory/LEARNING/<CATEGORY>/<YYYY-MM>/<ts>_LEARNING_<slug>.md
//	memory/LEARNING/SYNTHESIS/<YYYY-MM>/week-<NN>.md
//	memory/history/sessions/<YYYY-MM>/<ts>_SESSION_<slug>.md
//	memory/history/raw-outputs/<YYYY-MM>/<YYYY-MM-DD>_all-events.jsonl
//	memory/state/active-work.json
//	agent-sessions.json
//	skills/CORE/SKILL.md
package store

import (
	"os"
	"path/filepath"
	"time"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store reads and writes the signal tree rooted at one directory.
// It holds no open handles; every call opens and closes what it needs.
type Store struct {
	root string
	loc  *time.Location
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the zone used for local timestamps and month partitions.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New returns a Store rooted at root.
func New(root string, opts ...Option) *Store {
	s := &Store{root: root, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the root directory.
func (s *Store) Root() string { return s.root }

// Location returns the configured zone.
func (s *Store) Location() *time.Location { return s.loc }

// Now returns the current time in the configured zone.
func (s *Store) Now() time.Time { return s.now().In(s.loc) }

func (s *Store) memoryDir(parts ...string) string {
	return filepath.Join(append([]string{s.root, "memory"}, parts...)...)
}

// LearningDir is memory/LEARNING.
func (s *Store) LearningDir() string { return s.memoryDir("LEARNING") }

// SynthesisDir is memory/LEARNING/SYNTHESIS.
func (s *Store) SynthesisDir() string { return s.memoryDir("LEARNING", "SYNTHESIS") }

// SignalsDir is memory/LEARNING/SIGNALS.
func (s *Store) SignalsDir() string { return s.memoryDir("LEARNING", "SIGNALS") }

// RatingsPath is the append-only rating log.
func (s *Store) RatingsPath() string { return filepath.Join(s.SignalsDir(), "ratings.jsonl") }

// SessionsDir is memory/history/sessions.
func (s *Store) SessionsDir() string { return s.memoryDir("history", "sessions") }

// AgentSessionsPath is the session-to-agent map file.
func (s *Store) AgentSessionsPath() string { return filepath.Join(s.root, "agent-sessions.json") }

// CoreSkillPath is skills/CORE/SKILL.md.
func (s *Store) CoreSkillPath() string { return filepath.Join(s.root, "skills", "CORE", "SKILL.md") }

func ensureParent(path string) error {
	return os.MkdirAll(filepath.Dir(path), dirPerm)
}
