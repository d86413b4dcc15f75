// Package hookcmd installs and removes the pai hook entries in Claude Code
// settings.json. Entries owned by other tools are never touched.
package hookcmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dotcommander/pai/internal/models"
	"github.com/dotcommander/pai/internal/output"
)

const paiCommandFallback = "pai"

//nolint:gochecknoglobals // sync.Once singleton cache for hook definitions; required by the sync.Once pattern
var (
	paiHooksOnce  sync.Once
	paiHooksCache map[string]hookEntry

	// executablePath is swapped in tests, where os.Executable is the test binary.
	executablePath = os.Executable
)

type hookHandler struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

type hookEntry struct {
	Matcher string        `json:"matcher"`
	Hooks   []hookHandler `json:"hooks"`
}

func claudeSettingsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "settings.json")
}

func projectClaudeSettingsPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".", ".claude", "settings.json")
	}
	return filepath.Join(wd, ".claude", "settings.json")
}

// SettingsPath returns the user or project settings.json path.
func SettingsPath(projectScoped bool) string {
	if projectScoped {
		return projectClaudeSettingsPath()
	}
	return claudeSettingsPath()
}

func paiExecutable() string {
	exe, err := executablePath()
	if err != nil || strings.TrimSpace(exe) == "" {
		return paiCommandFallback
	}
	return exe
}

// buildPaiHookCommand constructs the hook command string for settings.json.
// args are string literals, never user input.
func buildPaiHookCommand(args string) string {
	exe := paiExecutable()
	if exe == paiCommandFallback {
		return fmt.Sprintf("pai hook %s", args)
	}
	return fmt.Sprintf("%q hook %s", exe, args)
}

func paiHooks() map[string]hookEntry {
	paiHooksOnce.Do(func() {
		paiHooksCache = buildPaiHooks()
	})
	return paiHooksCache
}

func eventHandler(eventType string) hookHandler {
	return hookHandler{
		Type:    "command",
		Command: buildPaiHookCommand("event --event-type " + eventType),
		Timeout: 2000,
	}
}

func buildPaiHooks() map[string]hookEntry {
	return map[string]hookEntry{
		models.HookEventSessionStart: {
			Matcher: "startup|resume|clear|compact",
			Hooks: []hookHandler{
				{Type: "command", Command: buildPaiHookCommand("session-start --json"), Timeout: 3000},
				eventHandler(models.HookEventSessionStart),
			},
		},
		models.HookEventUserPromptSubmit: {
			Hooks: []hookHandler{
				{Type: "command", Command: buildPaiHookCommand("rating"), Timeout: 2000},
				eventHandler(models.HookEventUserPromptSubmit),
			},
		},
		models.HookEventPreToolUse: {
			Hooks: []hookHandler{eventHandler(models.HookEventPreToolUse)},
		},
		models.HookEventPostToolUse: {
			Hooks: []hookHandler{eventHandler(models.HookEventPostToolUse)},
		},
		models.HookEventStop: {
			Hooks: []hookHandler{
				{Type: "command", Command: buildPaiHookCommand("stop"), Timeout: 5000},
				eventHandler(models.HookEventStop),
			},
		},
		models.HookEventSubagentStop: {
			Hooks: []hookHandler{eventHandler(models.HookEventSubagentStop)},
		},
	}
}

func paiHookEventNames() []string {
	events := make([]string, 0, len(paiHooks()))
	for name := range paiHooks() {
		events = append(events, name)
	}
	sort.Strings(events)
	return events
}

func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: settings path is fixed or project-local
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if settings == nil {
		settings = map[string]any{}
	}
	return settings, nil
}

func writeSettings(path string, settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// HasPaiHook checks if a hooks array already contains a pai hook command.
func HasPaiHook(entries []any) bool {
	for _, entry := range entries {
		if entryHasPaiHook(entry) {
			return true
		}
	}
	return false
}

func entryHasPaiHook(entry any) bool {
	entryMap, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	hooks, ok := entryMap["hooks"].([]any)
	if !ok {
		return false
	}
	for _, h := range hooks {
		hMap, ok := h.(map[string]any)
		if !ok {
			continue
		}
		cmd, _ := hMap["command"].(string)
		if IsPaiHookCommand(cmd) {
			return true
		}
	}
	return false
}

// IsPaiHookCommand checks if a command string is a pai hook command.
func IsPaiHookCommand(command string) bool {
	parts := strings.Fields(strings.TrimSpace(command))
	if len(parts) < 3 {
		return false
	}

	execToken := strings.Trim(parts[0], "\"'")
	if filepath.Base(execToken) != "pai" {
		return false
	}
	if parts[1] != "hook" {
		return false
	}

	switch parts[2] {
	case "rating", "stop", "session-start", "event":
		return true
	default:
		return false
	}
}

func hookEntryEqual(a, b map[string]any) bool {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}

type installOutcome int

const (
	hookInstalled installOutcome = iota
	hookUpdated
	hookSkipped
)

// upsertPaiHookEntry replaces any pai entry with newEntry, keeping other entries in order.
func upsertPaiHookEntry(existing []any, newEntry map[string]any) ([]any, installOutcome) {
	var kept []any
	hadPai := false
	matchingPai := false

	for _, currentEntry := range existing {
		if !entryHasPaiHook(currentEntry) {
			kept = append(kept, currentEntry)
			continue
		}
		hadPai = true
		if entryObj, ok := currentEntry.(map[string]any); ok && hookEntryEqual(entryObj, newEntry) {
			matchingPai = true
		}
	}

	kept = append(kept, newEntry)
	if matchingPai {
		return kept, hookSkipped
	}
	if hadPai {
		return kept, hookUpdated
	}
	return kept, hookInstalled
}

// InstallResult reports what Install changed, by hook event name.
type InstallResult struct {
	Path      string   `json:"path"`
	Installed []string `json:"installed"`
	Updated   []string `json:"updated,omitempty"`
	Skipped   []string `json:"skipped"`
	Message   string   `json:"message"`
}

// Install upserts the pai hook entries into the settings file at path.
func Install(path string) (InstallResult, error) {
	settings, err := readSettings(path)
	if err != nil {
		return InstallResult{}, err
	}

	hooksObj, _ := settings["hooks"].(map[string]any)
	if hooksObj == nil {
		hooksObj = map[string]any{}
	}

	res := InstallResult{Path: path, Installed: []string{}, Skipped: []string{}}
	for _, eventName := range paiHookEventNames() {
		existing, _ := hooksObj[eventName].([]any)

		entryJSON, err := json.Marshal(paiHooks()[eventName])
		if err != nil {
			return InstallResult{}, fmt.Errorf("encode %s hook: %w", eventName, err)
		}
		var entryMap map[string]any
		_ = json.Unmarshal(entryJSON, &entryMap)

		entries, outcome := upsertPaiHookEntry(existing, entryMap)
		hooksObj[eventName] = entries

		switch outcome {
		case hookInstalled:
			res.Installed = append(res.Installed, eventName)
		case hookUpdated:
			res.Updated = append(res.Updated, eventName)
		case hookSkipped:
			res.Skipped = append(res.Skipped, eventName)
		}
	}

	settings["hooks"] = hooksObj
	if err := writeSettings(path, settings); err != nil {
		return InstallResult{}, err
	}

	var parts []string
	if len(res.Installed) > 0 {
		parts = append(parts, fmt.Sprintf("Claude Code hooks installed (%s)", strings.Join(res.Installed, ", ")))
	}
	if len(res.Updated) > 0 {
		parts = append(parts, fmt.Sprintf("Claude Code hooks updated (%s)", strings.Join(res.Updated, ", ")))
	}
	if len(parts) == 0 {
		parts = append(parts, "Claude Code hooks already installed")
	}
	res.Message = strings.Join(parts, "; ") + ". Run 'pai status' to verify."
	return res, nil
}

// UninstallResult lists the hook events pai entries were removed from.
type UninstallResult struct {
	Path    string   `json:"path"`
	Removed []string `json:"removed"`
}

// Uninstall removes every pai hook entry from the settings file at path.
func Uninstall(path string) (UninstallResult, error) {
	res := UninstallResult{Path: path, Removed: []string{}}

	settings, err := readSettings(path)
	if err != nil {
		return UninstallResult{}, err
	}
	hooksObj, _ := settings["hooks"].(map[string]any)
	if hooksObj == nil {
		return res, nil
	}

	for _, eventName := range paiHookEventNames() {
		entries, ok := hooksObj[eventName].([]any)
		if !ok {
			continue
		}
		var kept []any
		for _, entry := range entries {
			if !entryHasPaiHook(entry) {
				kept = append(kept, entry)
			}
		}
		if len(kept) != len(entries) {
			res.Removed = append(res.Removed, eventName)
		}
		if len(kept) == 0 {
			delete(hooksObj, eventName)
		} else {
			hooksObj[eventName] = kept
		}
	}

	settings["hooks"] = hooksObj
	if err := writeSettings(path, settings); err != nil {
		return UninstallResult{}, err
	}
	return res, nil
}

// InstalledEvents returns the hook events at path that carry a pai entry.
func InstalledEvents(path string) ([]string, error) {
	settings, err := readSettings(path)
	if err != nil {
		return nil, err
	}
	hooksObj, _ := settings["hooks"].(map[string]any)
	events := []string{}
	for name, raw := range hooksObj {
		entries, _ := raw.([]any)
		if HasPaiHook(entries) {
			events = append(events, name)
		}
	}
	sort.Strings(events)
	return events, nil
}

// NewInstallCmd creates the hook install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install pai hooks into Claude Code settings",
		Long:  "Upserts the pai hook commands into settings.json. Idempotent; hooks owned by other tools are preserved.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectScoped, _ := cmd.Flags().GetBool("project")
			res, err := Install(SettingsPath(projectScoped))
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		},
	}
	cmd.Flags().Bool("project", false, "Install hooks in ./.claude/settings.json")
	return cmd
}

// NewUninstallCmd creates the hook uninstall command.
func NewUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove pai hooks from Claude Code settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectScoped, _ := cmd.Flags().GetBool("project")
			res, err := Uninstall(SettingsPath(projectScoped))
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		},
	}
	cmd.Flags().Bool("project", false, "Uninstall hooks from ./.claude/settings.json")
	return cmd
}

func printResult(cmd *cobra.Command, res any) error {
	cfg := output.DefaultConfig()
	cfg.Writer = cmd.OutOrStdout()
	return output.PrintWith(cfg, output.Success(res))
}
