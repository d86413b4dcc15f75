package actions

import (
	"context"
	"fmt"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/store"
)

// defaultSessionID is used when the payload carries neither session_id nor cwd.
const defaultSessionID = "main"

// EventSender delivers an envelope to the relay.
type EventSender interface {
	Send(ctx context.Context, env models.Envelope) error
}

// EventInput is one raw hook event.
type EventInput struct {
	EventType string
	Payload   map[string]any
	// DefaultAgent names the main agent; AgentOverride (PAI_AGENT) wins over the payload.
	DefaultAgent  string
	AgentOverride string
}

// CaptureEvent attributes the event to an agent, appends it to the daily raw
// log and forwards it to the relay. A nil sender skips the relay.
func CaptureEvent(ctx context.Context, s *store.Store, sender EventSender, in EventInput) Outcome {
	if in.EventType == "" {
		return skipped("missing event type", "Missing --event-type argument")
	}
	if in.Payload == nil {
		return skipped("empty payload")
	}

	sessionID := firstString(in.Payload, "session_id", "cwd")
	if sessionID == "" {
		sessionID = defaultSessionID
	}

	agents := store.LoadAgentSessions(s.AgentSessionsPath())
	agent := ResolveAgent(agents, sessionID, in)

	out := Outcome{Status: StatusCaptured}
	if err := agents.Save(); err != nil {
		out.Err = fmt.Errorf("save agent map: %w", err)
	}

	ev := s.NewHookEvent(agent, sessionID, in.EventType, in.Payload)
	path, err := s.AppendRawEvent(ev)
	if err != nil {
		return failed("append raw event", err)
	}
	out.Path = path

	if sender == nil {
		return out
	}
	env := models.Envelope{
		SourceApp:     agent,
		SessionID:     sessionID,
		HookEventType: in.EventType,
		Timestamp:     ev.Timestamp,
		ToolName:      stringField(in.Payload, "tool_name"),
		ToolInput:     in.Payload["tool_input"],
		AgentType:     agent,
	}
	if err := sender.Send(ctx, env); err != nil {
		out.Reason = "relay unavailable"
		out.Err = fmt.Errorf("relay event: %w", err)
	}
	return out
}

// ResolveAgent picks the agent for an event and records it in agents.
// Precedence: a Task tool call with subagent_type, a Stop or SubagentStop
// (back to the default agent), the override, the payload agent_type, then
// the existing mapping.
func ResolveAgent(agents *store.AgentSessions, sessionID string, in EventInput) string {
	defaultAgent := in.DefaultAgent
	if defaultAgent == "" {
		defaultAgent = "kiro"
	}

	var agent string
	switch {
	case stringField(in.Payload, "tool_name") == models.TaskToolName && subagentType(in.Payload) != "":
		agent = subagentType(in.Payload)
	case in.EventType == models.HookEventSubagentStop || in.EventType == models.HookEventStop:
		agent = defaultAgent
	case in.AgentOverride != "":
		agent = in.AgentOverride
	case stringField(in.Payload, "agent_type") != "":
		agent = stringField(in.Payload, "agent_type")
	default:
		return agents.Get(sessionID, defaultAgent)
	}
	agents.Set(sessionID, agent)
	return agent
}

func subagentType(payload map[string]any) string {
	input, ok := payload["tool_input"].(map[string]any)
	if !ok {
		return ""
	}
	return stringField(input, "subagent_type")
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v := stringField(m, k); v != "" {
			return v
		}
	}
	return ""
}
