package models

import "time"

// Category partitions learnings into environment/tooling lessons and code lessons.
type Category string

const (
	CategorySystem    Category = "SYSTEM"
	CategoryAlgorithm Category = "ALGORITHM"
)

// Categories lists every learning category in directory scan order.
var Categories = []Category{CategorySystem, CategoryAlgorithm} //nolint:gochecknoglobals // fixed enumeration

// Valid reports whether c is one of the two known categories.
func (c Category) Valid() bool {
	return c == CategorySystem || c == CategoryAlgorithm
}

// CaptureType is the capture_type front-matter value of a signal document.
type CaptureType string

const (
	CaptureLearning  CaptureType = "LEARNING"
	CaptureLowRating CaptureType = "LOW_RATING"
	CaptureSession   CaptureType = "SESSION"
)

// UnknownSession is recorded when the host payload carries no session id.
const UnknownSession = "unknown"

// Rating is one line of ratings.jsonl.
type Rating struct {
	Timestamp string `json:"timestamp"`
	Rating    int    `json:"rating"`
	SessionID string `json:"session_id"`
	Comment   string `json:"comment"`
}

// Learning is a captured insight read back from its Markdown document.
type Learning struct {
	Path        string      `json:"path"`
	Category    Category    `json:"category"`
	CaptureType CaptureType `json:"capture_type"`
	Timestamp   string      `json:"timestamp"`
	SessionID   string      `json:"session_id"`
	Title       string      `json:"title"`
	Insight     string      `json:"insight"`
	FullContent string      `json:"full_content"`
	Rating      *int        `json:"rating,omitempty"`
}

// Trend is the direction of ratings across the synthesis window.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendStable Trend = "stable"
	TrendDown   Trend = "down"
)

// RatingsSummary aggregates the ratings of one synthesis window.
type RatingsSummary struct {
	Count         int     `json:"count"`
	Average       float64 `json:"average"`
	Lowest        int     `json:"lowest"`
	LowestComment string  `json:"lowest_comment"`
	Trend         Trend   `json:"trend"`
}

// Pattern is a recurring keyword across learnings.
type Pattern struct {
	Keyword string `json:"pattern"`
	Count   int    `json:"count"`
}

// LearningCounts counts learnings per category.
type LearningCounts struct {
	System    int `json:"system"`
	Algorithm int `json:"algorithm"`
}

// WeeklyReport is the result of one weekly synthesis.
type WeeklyReport struct {
	WeekNumber      int             `json:"week_number"`
	Year            int             `json:"year"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	RatingsSummary  *RatingsSummary `json:"ratings_summary,omitempty"`
	Patterns        []Pattern       `json:"patterns"`
	LearningsCount  LearningCounts  `json:"learnings_count"`
	Recommendations []string        `json:"recommendations"`
	Path            string          `json:"path,omitempty"`
}

// ActiveWork is the current task pointer kept in memory/state/active-work.json.
type ActiveWork struct {
	CurrentTask string   `json:"current_task"`
	Project     string   `json:"project,omitempty"`
	StartedAt   string   `json:"started_at,omitempty"`
	Context     []string `json:"context,omitempty"`
}

// SessionFile is a session summary document located by partition and name.
type SessionFile struct {
	RelPath string    `json:"rel_path"`
	ModTime time.Time `json:"mod_time"`
}

// HookEvent is one line of the daily raw event log.
type HookEvent struct {
	SourceApp      string         `json:"source_app"`
	SessionID      string         `json:"session_id"`
	HookEventType  string         `json:"hook_event_type"`
	Payload        map[string]any `json:"payload"`
	Timestamp      int64          `json:"timestamp"`
	TimestampLocal string         `json:"timestamp_local"`
}

// Envelope is the normalized event posted to the relay.
type Envelope struct {
	SourceApp     string `json:"source_app"`
	SessionID     string `json:"session_id"`
	HookEventType string `json:"hook_event_type"`
	Timestamp     int64  `json:"timestamp"`
	ToolName      string `json:"tool_name,omitempty"`
	ToolInput     any    `json:"tool_input,omitempty"`
	AgentType     string `json:"agent_type,omitempty"`
}

// ArchivedEvent is a relayed envelope as stored in the event archive.
type ArchivedEvent struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Envelope
}

// EventStats summarizes archived events.
type EventStats struct {
	Total            int            `json:"total"`
	ByHookEventType  map[string]int `json:"by_hook_event_type"`
	DistinctSessions int            `json:"distinct_sessions"`
}
