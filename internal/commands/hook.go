package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/pai/internal/actions"
	"github.com/dotcommander/pai/internal/app"
	"github.com/dotcommander/pai/internal/capture"
	"github.com/dotcommander/pai/internal/commands/hookcmd"
	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/relay"
)

const (
	// maxHookStdinBytes caps stdin reads. Hook payloads are small JSON objects;
	// 1 MB is generous headroom that prevents unbounded allocation.
	maxHookStdinBytes = 1 << 20

	// eventHookTimeout bounds the relay round trip of one event hook.
	eventHookTimeout = 5 * time.Second
)

// NewHookCmd creates the hook parent command.
func NewHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Hook handlers and installers for Claude Code and Kiro",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(hookcmd.NewInstallCmd())
	cmd.AddCommand(hookcmd.NewUninstallCmd())

	// Handlers are invoked by the host, not by people; keep them out of help.
	for _, sub := range []*cobra.Command{
		newHookRatingCmd(),
		newHookStopCmd(),
		newHookSessionStartCmd(),
		newHookEventCmd(),
	} {
		sub.Hidden = true
		cmd.AddCommand(sub)
	}

	namespaceIndex(cmd)
	return cmd
}

// hookInput is the JSON the host sends on stdin to hooks.
type hookInput struct {
	SessionID      string         `json:"session_id"`
	HookEventName  string         `json:"hook_event_name"`
	Prompt         string         `json:"prompt"`
	Response       string         `json:"response"`
	TranscriptPath string         `json:"transcript_path"`
	Raw            map[string]any `json:"-"`
}

// hookOutput is the JSON the host expects on stdout from SessionStart hooks.
type hookOutput struct {
	HookSpecificOutput *hookSpecific `json:"hookSpecificOutput,omitempty"`
}

type hookSpecific struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

func readHookStdin(r io.Reader) hookInput {
	data, err := io.ReadAll(io.LimitReader(r, maxHookStdinBytes))
	if err != nil || len(data) == 0 {
		return hookInput{}
	}
	var input hookInput
	if err := json.Unmarshal(data, &input); err != nil {
		slog.Default().Debug("hook stdin unmarshal failed", "error", err, "bytes", len(data))
		return hookInput{}
	}
	// Struct tags cover the fields hooks read; Raw keeps the whole payload
	// for the event log and the relay.
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err == nil {
		input.Raw = raw
	}
	return input
}

// reportOutcome writes the user-visible feedback lines to stderr and logs
// the outcome. It never fails: hooks must not disrupt the host.
func reportOutcome(cmd *cobra.Command, hook string, out actions.Outcome) {
	w := cmd.ErrOrStderr()
	for _, line := range out.Feedback {
		fmt.Fprintln(w, line)
	}

	log := slog.Default().With("hook_event", hook)
	switch out.Status {
	case actions.StatusSkipped:
		log.Debug("hook skipped", "reason", out.Reason)
	case actions.StatusFailed:
		log.Error("hook failed", "reason", out.Reason, "error", errString(out.Err))
		fmt.Fprintf(w, "⚠️ %s capture failed: %s\n", hook, errString(out.Err))
	default:
		if out.Err != nil {
			log.Warn("hook step failed", "reason", out.Reason, "error", out.Err.Error(), "path", out.Path)
			return
		}
		log.Debug("hook captured", "path", out.Path)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func newHookRatingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rating",
		Short: "UserPromptSubmit handler: capture explicit ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := readHookStdin(cmd.InOrStdin())
			st, err := openStore()
			if err != nil {
				slog.Default().Warn("rating hook: resolve root failed", "error", err)
				return nil
			}
			vocab := capture.ConfiguredVocabulary()
			reportOutcome(cmd, "rating", actions.CaptureRating(st, vocab.UnitWords, input.SessionID, input.Prompt))
			return nil
		},
	}
}

func newHookStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop handler: capture learnings and session summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := readHookStdin(cmd.InOrStdin())
			st, err := openStore()
			if err != nil {
				slog.Default().Warn("stop hook: resolve root failed", "error", err)
				return nil
			}
			classifier := capture.NewClassifier(capture.ConfiguredVocabulary())
			out := actions.CaptureResponse(st, classifier, actions.ResponseInput{
				SessionID:      input.SessionID,
				HookEventName:  input.HookEventName,
				Response:       input.Response,
				TranscriptPath: input.TranscriptPath,
			})
			reportOutcome(cmd, "stop", out)
			return nil
		},
	}
}

func newHookSessionStartCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "session-start",
		Short: "SessionStart handler: inject core context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				slog.Default().Warn("session-start hook: resolve root failed", "error", err)
				return nil
			}
			text, out := actions.BuildSessionContext(st, actions.ContextOptions{
				Subagent: app.IsSubagentSession(),
			})
			reportOutcome(cmd, "session-start", out)
			if out.Status != actions.StatusCaptured {
				return nil
			}

			w := cmd.OutOrStdout()
			if !asJSON {
				fmt.Fprintln(w, text)
				return nil
			}
			payload := hookOutput{HookSpecificOutput: &hookSpecific{
				HookEventName:     models.HookEventSessionStart,
				AdditionalContext: text,
			}}
			if err := json.NewEncoder(w).Encode(payload); err != nil {
				slog.Default().Warn("session-start hook: encode output failed", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit hookSpecificOutput JSON instead of plain text")
	return cmd
}

func newHookEventCmd() *cobra.Command {
	var eventType string
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Generic handler: log the raw event and forward it to the relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := readHookStdin(cmd.InOrStdin())
			st, err := openStore()
			if err != nil {
				slog.Default().Warn("event hook: resolve root failed", "error", err)
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), eventHookTimeout)
			defer cancel()

			out := actions.CaptureEvent(ctx, st, relay.NewClient(app.RelayURL()), actions.EventInput{
				EventType:     eventType,
				Payload:       input.Raw,
				DefaultAgent:  app.DefaultAgentName(),
				AgentOverride: app.AgentOverride(),
			})
			reportOutcome(cmd, eventType, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&eventType, "event-type", "", "Hook event type (e.g. PreToolUse, Stop)")
	return cmd
}
