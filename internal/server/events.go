package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/store"
)

// maxEventBody caps a POST /events body.
const maxEventBody = 1 << 20

func (s *Server) handlePostEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		s.metrics.EventsRejectedTotal.Inc()
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		s.metrics.EventsRejectedTotal.Inc()
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ev := s.archiveEvent(r, env)
	s.recent.Push(ev)
	s.hub.broadcast(wsMessage{Type: messageEvent, Event: &ev})
	s.metrics.EventsReceivedTotal.WithLabelValues(eventTypeLabel(env.HookEventType)).Inc()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// archiveEvent persists env when an archive is configured. Archive failures
// are counted and logged; the event is still buffered and broadcast.
func (s *Server) archiveEvent(r *http.Request, env models.Envelope) models.ArchivedEvent {
	local := models.ArchivedEvent{ID: uuid.NewString(), ReceivedAt: s.now().UTC(), Envelope: env}
	if s.archive == nil {
		return local
	}

	start := time.Now()
	rec, err := s.archive.Insert(r.Context(), env)
	s.metrics.ArchiveWriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ArchiveErrorsTotal.Inc()
		slog.Default().Warn("archive event failed", "error", err, "hook_event", env.HookEventType)
		return local
	}
	return rec
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), defaultEventsLimit)
	writeJSON(w, http.StatusOK, s.recent.Newest(limit))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "event archive disabled")
		return
	}
	q := r.URL.Query()
	events, err := s.archive.History(r.Context(), store.HistoryParams{
		SessionID:     q.Get("session_id"),
		HookEventType: q.Get("hook_event_type"),
		Limit:         parseLimit(q.Get("limit"), 0),
	})
	if err != nil {
		slog.Default().Error("event history failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusServiceUnavailable, "event archive disabled")
		return
	}
	stats, err := s.archive.Stats(r.Context())
	if err != nil {
		slog.Default().Error("event stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "stats unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// parseLimit returns the positive integer in raw, or fallback.
func parseLimit(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// eventTypeLabel bounds the metric label set: clients may send any type string.
func eventTypeLabel(v string) string {
	switch v {
	case "":
		return "unknown"
	case models.HookEventSessionStart, models.HookEventUserPromptSubmit,
		models.HookEventPreToolUse, models.HookEventPostToolUse,
		models.HookEventStop, models.HookEventSubagentStop:
		return v
	default:
		return "other"
	}
}
