package actions

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/store"
)

type fakeSender struct {
	sent []models.Envelope
	err  error
}

func (f *fakeSender) Send(_ context.Context, env models.Envelope) error {
	f.sent = append(f.sent, env)
	return f.err
}

func TestCaptureEvent_AppendsAndRelays(t *testing.T) {
	s := newTestStore(t)
	sender := &fakeSender{}

	out := CaptureEvent(context.Background(), s, sender, EventInput{
		EventType: models.HookEventPreToolUse,
		Payload: map[string]any{
			"session_id": "s1",
			"tool_name":  "Bash",
			"tool_input": map[string]any{"command": "ls"},
		},
	})
	require.Equal(t, StatusCaptured, out.Status)
	require.NoError(t, out.Err)
	require.Equal(t, s.RawEventsPath(), out.Path)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	var ev models.HookEvent
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &ev))
	require.Equal(t, "kiro", ev.SourceApp)
	require.Equal(t, "s1", ev.SessionID)
	require.Equal(t, models.HookEventPreToolUse, ev.HookEventType)
	require.Equal(t, testNow.UnixMilli(), ev.Timestamp)

	require.Len(t, sender.sent, 1)
	require.Equal(t, "Bash", sender.sent[0].ToolName)
	require.Equal(t, "kiro", sender.sent[0].SourceApp)
	require.Equal(t, map[string]any{"command": "ls"}, sender.sent[0].ToolInput)
}

func TestCaptureEvent_RelayFailureStillCaptured(t *testing.T) {
	s := newTestStore(t)
	sender := &fakeSender{err: errors.New("connection refused")}

	out := CaptureEvent(context.Background(), s, sender, EventInput{
		EventType: models.HookEventStop,
		Payload:   map[string]any{"cwd": "/work/repo"},
	})
	require.Equal(t, StatusCaptured, out.Status)
	require.Equal(t, "relay unavailable", out.Reason)
	require.ErrorContains(t, out.Err, "connection refused")
	require.Equal(t, "/work/repo", sender.sent[0].SessionID)
}

func TestCaptureEvent_Skips(t *testing.T) {
	s := newTestStore(t)

	out := CaptureEvent(context.Background(), s, nil, EventInput{Payload: map[string]any{}})
	require.Equal(t, StatusSkipped, out.Status)
	require.Equal(t, []string{"Missing --event-type argument"}, out.Feedback)

	require.Equal(t, StatusSkipped, CaptureEvent(context.Background(), s, nil, EventInput{EventType: "Stop"}).Status)
	require.Empty(t, listFiles(t, s.Root()))
}

func TestCaptureEvent_SubagentMappingPersists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	CaptureEvent(ctx, s, nil, EventInput{
		EventType: models.HookEventPreToolUse,
		Payload: map[string]any{
			"session_id": "s1",
			"tool_name":  models.TaskToolName,
			"tool_input": map[string]any{"subagent_type": "researcher"},
		},
	})
	agents := store.LoadAgentSessions(s.AgentSessionsPath())
	require.Equal(t, "researcher", agents.Get("s1", ""))

	out := CaptureEvent(ctx, s, nil, EventInput{
		EventType: models.HookEventPostToolUse,
		Payload:   map[string]any{"session_id": "s1"},
	})
	require.Equal(t, StatusCaptured, out.Status)

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], `"source_app":"researcher"`)
}

func TestResolveAgent(t *testing.T) {
	task := map[string]any{
		"tool_name":  models.TaskToolName,
		"tool_input": map[string]any{"subagent_type": "engineer"},
		"agent_type": "ignored",
	}
	cases := []struct {
		name     string
		existing string
		in       EventInput
		want     string
		mapped   string
	}{
		{
			name: "task spawn wins over override",
			in:   EventInput{EventType: models.HookEventPreToolUse, Payload: task, AgentOverride: "pinned"},
			want: "engineer", mapped: "engineer",
		},
		{
			name:     "stop returns to default",
			existing: "engineer",
			in:       EventInput{EventType: models.HookEventSubagentStop, Payload: map[string]any{}, DefaultAgent: "main-agent"},
			want:     "main-agent", mapped: "main-agent",
		},
		{
			name: "override beats agent_type",
			in:   EventInput{EventType: models.HookEventPreToolUse, Payload: map[string]any{"agent_type": "x"}, AgentOverride: "pinned"},
			want: "pinned", mapped: "pinned",
		},
		{
			name: "agent_type from payload",
			in:   EventInput{EventType: models.HookEventPreToolUse, Payload: map[string]any{"agent_type": "x"}},
			want: "x", mapped: "x",
		},
		{
			name:     "existing mapping",
			existing: "engineer",
			in:       EventInput{EventType: models.HookEventPostToolUse, Payload: map[string]any{}},
			want:     "engineer", mapped: "engineer",
		},
		{
			name: "unmapped falls back to default",
			in:   EventInput{EventType: models.HookEventPostToolUse, Payload: map[string]any{}},
			want: "kiro",
		},
		{
			name: "task without subagent_type",
			in:   EventInput{EventType: models.HookEventPreToolUse, Payload: map[string]any{"tool_name": models.TaskToolName}},
			want: "kiro",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			agents := store.LoadAgentSessions(t.TempDir() + "/agents.json")
			if tc.existing != "" {
				agents.Set("s", tc.existing)
			}
			require.Equal(t, tc.want, ResolveAgent(agents, "s", tc.in))
			require.Equal(t, tc.mapped, agents.Get("s", ""))
		})
	}
}
