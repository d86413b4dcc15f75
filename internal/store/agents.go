package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// AgentSessions maps session ids to the agent running them.
// Load once, mutate, then Save; Save is a no-op when nothing changed.
type AgentSessions struct {
	path     string
	mappings map[string]string
	dirty    bool
}

// LoadAgentSessions reads the map at path. A missing or unreadable file yields
// an empty map so one bad write never blocks event capture.
func LoadAgentSessions(path string) *AgentSessions {
	a := &AgentSessions{path: path, mappings: map[string]string{}}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is under the configured root
	if err != nil {
		return a
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil && m != nil {
		a.mappings = m
	}
	return a
}

// Get returns the agent for sessionID, or fallback when unmapped.
func (a *AgentSessions) Get(sessionID, fallback string) string {
	if agent, ok := a.mappings[sessionID]; ok && agent != "" {
		return agent
	}
	return fallback
}

// Set records agent for sessionID.
func (a *AgentSessions) Set(sessionID, agent string) {
	if a.mappings[sessionID] == agent {
		return
	}
	a.mappings[sessionID] = agent
	a.dirty = true
}

// Len returns the number of mapped sessions.
func (a *AgentSessions) Len() int { return len(a.mappings) }

// Save writes the map when it changed since load.
func (a *AgentSessions) Save() error {
	if !a.dirty {
		return nil
	}
	if err := ensureParent(a.path); err != nil {
		return fmt.Errorf("create agent map dir: %w", err)
	}
	data, err := json.MarshalIndent(a.mappings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode agent map: %w", err)
	}
	if err := os.WriteFile(a.path, data, filePerm); err != nil {
		return fmt.Errorf("write agent map: %w", err)
	}
	a.dirty = false
	return nil
}
