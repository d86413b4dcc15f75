package server

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/patrickmn/go-cache"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/synthesis"
)

const (
	ratingsCacheKey = "ratings"
	reportCacheKey  = "report"
	digestDays      = 7
	summaryRunes    = 50
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

	reportFrontMatter = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

	dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))
)

type dashboardView struct {
	Total    int
	ToolUses int
	Prompts  int
	Events   []eventRow
	Ratings  *models.RatingsSummary
	Report   *reportFragment
}

type eventRow struct {
	Time    string
	Type    string
	Tool    string
	Summary string
}

// reportFragment is the latest weekly report rendered to HTML.
type reportFragment struct {
	Path string
	Year int
	Week int
	HTML template.HTML
}

type reportMeta struct {
	Year int `yaml:"year"`
	Week int `yaml:"week"`
}

// ratingsDigest wraps the cached summary so a nil result is cacheable.
type ratingsDigest struct {
	summary *models.RatingsSummary
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	events := s.recent.Newest(0)
	view := dashboardView{
		Total:   len(events),
		Events:  make([]eventRow, 0, defaultEventsLimit),
		Ratings: s.ratingsDigest(),
		Report:  s.latestReport(),
	}
	for i, ev := range events {
		switch ev.HookEventType {
		case models.HookEventPreToolUse:
			view.ToolUses++
		case models.HookEventUserPromptSubmit:
			view.Prompts++
		}
		if i < defaultEventsLimit {
			view.Events = append(view.Events, s.eventRow(ev))
		}
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		slog.Default().Error("render dashboard failed", "error", err)
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) eventRow(ev models.ArchivedEvent) eventRow {
	ts := ev.ReceivedAt
	if ev.Timestamp > 0 {
		ts = time.UnixMilli(ev.Timestamp)
	}
	return eventRow{
		Time:    ts.In(s.store.Location()).Format("15:04:05"),
		Type:    ev.HookEventType,
		Tool:    orDash(ev.ToolName),
		Summary: orDash(commandSummary(ev.ToolInput)),
	}
}

func (s *Server) ratingsDigest() *models.RatingsSummary {
	if cached, ok := s.cache.Get(ratingsCacheKey); ok {
		return cached.(ratingsDigest).summary
	}
	ratings, err := s.store.LoadRatings(digestDays)
	if err != nil {
		slog.Default().Warn("load ratings for dashboard failed", "error", err)
		return nil
	}
	summary := synthesis.AnalyzeRatings(ratings)
	s.cache.Set(ratingsCacheKey, ratingsDigest{summary: summary}, cache.DefaultExpiration)
	return summary
}

func (s *Server) latestReport() *reportFragment {
	if cached, ok := s.cache.Get(reportCacheKey); ok {
		return cached.(*reportFragment)
	}
	path, content, found, err := s.store.LatestReport()
	if err != nil {
		slog.Default().Warn("load latest report failed", "error", err)
		return nil
	}
	var frag *reportFragment
	if found {
		frag, err = renderReport(path, content)
		if err != nil {
			slog.Default().Warn("render latest report failed", "error", err, "path", path)
			return nil
		}
	}
	s.cache.Set(reportCacheKey, frag, cache.DefaultExpiration)
	return frag
}

// renderReport converts a report document body to HTML, dropping its front matter.
func renderReport(path, content string) (*reportFragment, error) {
	var meta reportMeta
	body, err := frontmatter.Parse(strings.NewReader(content), &meta, reportFrontMatter)
	if err != nil {
		return nil, fmt.Errorf("parse report front matter: %w", err)
	}
	var buf bytes.Buffer
	if err := markdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("convert report markdown: %w", err)
	}
	return &reportFragment{
		Path: path,
		Year: meta.Year,
		Week: meta.Week,
		HTML: template.HTML(buf.String()), //nolint:gosec // goldmark escapes raw HTML by default
	}, nil
}

// commandSummary returns the first 50 runes of tool_input.command, if any.
func commandSummary(input any) string {
	m, ok := input.(map[string]any)
	if !ok {
		return ""
	}
	cmd, _ := m["command"].(string)
	runes := []rune(cmd)
	if len(runes) > summaryRunes {
		runes = runes[:summaryRunes]
	}
	return string(runes)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

const dashboardHTML = `<!DOCTYPE html>
<html>
<head>
  <title>PAI Observability</title>
  <meta charset="utf-8">
  <meta http-equiv="refresh" content="5">
  <style>
    body { font-family: -apple-system, sans-serif; margin: 20px; background: #1a1a2e; color: #eee; }
    h1 { color: #00d9ff; }
    table { width: 100%; border-collapse: collapse; }
    th, td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #333; }
    th { background: #16213e; }
    .badge { padding: 2px 8px; border-radius: 4px; font-size: 12px; }
    .PreToolUse { background: #f39c12; color: #000; }
    .PostToolUse { background: #27ae60; color: #fff; }
    .UserPromptSubmit { background: #3498db; color: #fff; }
    .Stop { background: #e74c3c; color: #fff; }
    .SessionStart { background: #9b59b6; color: #fff; }
    .stats { display: flex; gap: 20px; margin: 20px 0; }
    .stat { background: #16213e; padding: 15px; border-radius: 8px; }
    .stat-value { font-size: 24px; font-weight: bold; color: #00d9ff; }
    .report { background: #16213e; padding: 15px 20px; border-radius: 8px; }
  </style>
</head>
<body>
  <h1>🔭 PAI Observability</h1>

  <div class="stats">
    <div class="stat"><div class="stat-value">{{.Total}}</div><div>Total Events</div></div>
    <div class="stat"><div class="stat-value">{{.ToolUses}}</div><div>Tool Uses</div></div>
    <div class="stat"><div class="stat-value">{{.Prompts}}</div><div>Prompts</div></div>
    {{- with .Ratings}}
    <div class="stat"><div class="stat-value">{{.Average}}</div><div>Avg Rating (7d, {{.Count}} ratings, {{.Trend}})</div></div>
    {{- end}}
  </div>

  <h2>Recent Events</h2>
  <table>
    <thead><tr><th>Time</th><th>Type</th><th>Tool</th><th>Summary</th></tr></thead>
    <tbody>
    {{- range .Events}}
      <tr>
        <td>{{.Time}}</td>
        <td><span class="badge {{.Type}}">{{.Type}}</span></td>
        <td>{{.Tool}}</td>
        <td>{{.Summary}}</td>
      </tr>
    {{- else}}
      <tr><td colspan="4">No events yet</td></tr>
    {{- end}}
    </tbody>
  </table>

  {{- with .Report}}
  <h2>Latest Weekly Synthesis ({{.Year}}-W{{printf "%02d" .Week}})</h2>
  <div class="report">{{.HTML}}</div>
  {{- end}}

  <p style="color: #666; font-size: 12px; margin-top: 20px;">
    Auto-refreshes every 5 seconds. API: GET /events, GET /events/history, WS /ws
  </p>
</body>
</html>`
