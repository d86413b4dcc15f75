package actions

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/store"
	"github.com/dotcommander/pai/internal/synthesis"
)

const (
	recentSessionLimit  = 3
	recentLearningLimit = 5
	digestDays          = 7
)

// ContextOptions controls BuildSessionContext.
type ContextOptions struct {
	Now      time.Time
	Subagent bool
}

// BuildSessionContext assembles the session-start system reminder.
// The returned text is empty unless the outcome is Captured.
func BuildSessionContext(s *store.Store, opts ContextOptions) (string, Outcome) {
	if opts.Subagent {
		return "", skipped("sub-agent session")
	}

	skill, found, err := s.CoreSkill()
	if err != nil {
		return "", failed("read core skill", err)
	}
	if !found {
		return "", skipped("no core skill", "[PaiLang] No CORE skill found - skipping context injection")
	}

	now := opts.Now
	if now.IsZero() {
		now = s.Now()
	}
	now = now.In(s.Location())

	var b strings.Builder
	b.WriteString("<system-reminder>\nCORE CONTEXT (Auto-loaded at Session Start)\n\n")
	fmt.Fprintf(&b, "📅 CURRENT DATE/TIME: %s\n\n", now.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "The following context has been loaded from %s:\n\n", s.CoreSkillPath())
	b.WriteString(skill)
	b.WriteString("\n")
	b.WriteString(activeWorkSection(s.LoadActiveWork()))
	b.WriteString(recentSessionsSection(s))
	b.WriteString(ratingDigestSection(s))
	b.WriteString(recentLearningsSection(s))
	b.WriteString("\nThis context is now active for this session. Follow all instructions, preferences, and guidelines contained above.\n")
	b.WriteString("</system-reminder>\n\n✅ Context successfully loaded...")

	return b.String(), Outcome{Status: StatusCaptured, Path: s.CoreSkillPath()}
}

func activeWorkSection(w *models.ActiveWork) string {
	if w == nil {
		return ""
	}
	items := "N/A"
	if len(w.Context) > 0 {
		items = strings.Join(w.Context, ", ")
	}
	return fmt.Sprintf(`
## 📌 Active Work (from memory)
- **Task:** %s
- **Project:** %s
- **Started:** %s
- **Context:** %s

Consider: Is this session related to the above work? If so, continue from where you left off.
`, w.CurrentTask, orNA(w.Project), orNA(w.StartedAt), items)
}

func recentSessionsSection(s *store.Store) string {
	sessions, err := s.RecentSessions(recentSessionLimit)
	if err != nil || len(sessions) == 0 {
		return ""
	}
	lines := make([]string, len(sessions))
	for i, sf := range sessions {
		lines[i] = fmt.Sprintf("- `memory/history/sessions/%s`", sf.RelPath)
	}
	return fmt.Sprintf("\n## 📜 Recent Sessions\n%s\n\nUse `cat %s` to review if relevant.\n",
		strings.Join(lines, "\n"), filepath.Join(s.SessionsDir(), "[file]"))
}

func ratingDigestSection(s *store.Store) string {
	ratings, err := s.LoadRatings(digestDays)
	if err != nil {
		return ""
	}
	summary := synthesis.AnalyzeRatings(ratings)
	if summary == nil {
		return ""
	}
	return fmt.Sprintf("\n## ⭐ Recent Ratings (last %d days)\n- **Count:** %d\n- **Average:** %s / 10\n- **Lowest:** %d (%s)\n- **Trend:** %s\n",
		digestDays, summary.Count, strconv.FormatFloat(summary.Average, 'f', -1, 64),
		summary.Lowest, summary.LowestComment, summary.Trend)
}

func recentLearningsSection(s *store.Store) string {
	learnings, err := s.LoadLearnings(digestDays)
	if err != nil || len(learnings) == 0 {
		return ""
	}
	if len(learnings) > recentLearningLimit {
		learnings = learnings[:recentLearningLimit]
	}
	lines := make([]string, len(learnings))
	for i, l := range learnings {
		lines[i] = fmt.Sprintf("- [%s] %s", l.Category, l.Title)
	}
	return "\n## 🧠 Recent Learnings\n" + strings.Join(lines, "\n") + "\n"
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
