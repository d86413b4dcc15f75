package models

// Host hook event names the capture layer reacts to.
const (
	HookEventSessionStart     = "SessionStart"
	HookEventUserPromptSubmit = "UserPromptSubmit"
	HookEventPreToolUse       = "PreToolUse"
	HookEventPostToolUse      = "PostToolUse"
	HookEventStop             = "Stop"
	HookEventSubagentStop     = "SubagentStop"
)

// TaskToolName is the tool whose subagent_type input names a spawned agent.
const TaskToolName = "Task"
