package synthesis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dotcommander/pai/internal/models"
)

var trendArrows = map[models.Trend]string{
	models.TrendUp:     "↑",
	models.TrendDown:   "↓",
	models.TrendStable: "→",
}

// Render formats report as the weekly synthesis Markdown document.
func Render(report *models.WeeklyReport, generated time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "---\ntype: weekly-synthesis\nyear: %d\nweek: %d\ngenerated: %s\n---\n\n",
		report.Year, report.WeekNumber, generated.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	b.WriteString("# Weekly Learning Synthesis\n\n")
	fmt.Fprintf(&b, "**Week:** %d-W%02d\n", report.Year, report.WeekNumber)
	fmt.Fprintf(&b, "**Period:** %s to %s\n\n", report.StartDate, report.EndDate)

	b.WriteString("## Rating Summary\n\n")
	if rs := report.RatingsSummary; rs != nil {
		fmt.Fprintf(&b, "\n- **Count:** %d ratings\n", rs.Count)
		fmt.Fprintf(&b, "- **Average:** %s / 10\n", strconv.FormatFloat(rs.Average, 'f', -1, 64))
		fmt.Fprintf(&b, "- **Lowest:** %d (%s)\n", rs.Lowest, rs.LowestComment)
		fmt.Fprintf(&b, "- **Trend:** %s %s\n", trendArrows[rs.Trend], rs.Trend)
	} else {
		b.WriteString("*No ratings this week*")
	}
	b.WriteString("\n\n")

	b.WriteString("## Learning Summary\n\n")
	fmt.Fprintf(&b, "- **SYSTEM:** %d learnings\n", report.LearningsCount.System)
	fmt.Fprintf(&b, "- **ALGORITHM:** %d learnings\n\n", report.LearningsCount.Algorithm)

	b.WriteString("## Recurring Patterns\n\n")
	if len(report.Patterns) > 0 {
		lines := make([]string, len(report.Patterns))
		for i, p := range report.Patterns {
			lines[i] = fmt.Sprintf("- **%s:** appeared %d times", p.Keyword, p.Count)
		}
		b.WriteString(strings.Join(lines, "\n"))
	} else {
		b.WriteString("*No recurring patterns detected*")
	}
	b.WriteString("\n\n")

	b.WriteString("## Recommendations\n\n")
	if len(report.Recommendations) > 0 {
		lines := make([]string, len(report.Recommendations))
		for i, r := range report.Recommendations {
			lines[i] = fmt.Sprintf("%d. %s", i+1, r)
		}
		b.WriteString(strings.Join(lines, "\n"))
	} else {
		b.WriteString("*No specific recommendations*")
	}
	b.WriteString("\n\n---\n\n*Auto-generated by PAI Learning System*\n")

	return b.String()
}
