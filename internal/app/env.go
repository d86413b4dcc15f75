package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultRelayURL  = "http://localhost:4000/events"
	defaultRelayPort = "4000"
	defaultAgentName = "kiro"
)

// GetRootDir resolves the memory tree root.
// Order of precedence:
// 1) CLI override (--root)
// 2) PAI_DIR, then KIRO_DIR
// 3) config.yaml: root_dir
// 4) Default: ~/.kiro
func GetRootDir() (string, error) {
	path, _, err := ResolveRootDirDetailed()
	return path, err
}

// ResolveRootDirDetailed returns the resolved root along with the source of that decision.
func ResolveRootDirDetailed() (path string, source string, err error) {
	if override := getRootOverride(); override != "" {
		return expandHome(override), "cli(--root)", nil
	}
	for _, env := range []string{"PAI_DIR", "KIRO_DIR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return expandHome(v), fmt.Sprintf("env(%s)", env), nil
		}
	}

	cfg, err := LoadSettings()
	if err != nil {
		return "", "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.RootDir != "" {
		return expandHome(cfg.RootDir), "config(root_dir)", nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".kiro"), "default(~/.kiro)", nil
}

// Location returns the zone used for local timestamps.
// TIME_ZONE wins over config.yaml; unknown zones fall back to time.Local.
func Location() *time.Location {
	name := strings.TrimSpace(os.Getenv("TIME_ZONE"))
	if name == "" {
		if cfg, err := LoadSettings(); err == nil {
			name = cfg.TimeZone
		}
	}
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// RelayURL returns the endpoint hooks post event envelopes to.
func RelayURL() string {
	if v := strings.TrimSpace(os.Getenv("PAI_OBSERVABILITY_URL")); v != "" {
		return v
	}
	if cfg, err := LoadSettings(); err == nil && cfg.RelayURL != "" {
		return cfg.RelayURL
	}
	return defaultRelayURL
}

// RelayAddr returns the listen address for the relay service.
func RelayAddr() string {
	if v := strings.TrimSpace(os.Getenv("PAI_OBSERVABILITY_PORT")); v != "" {
		return ":" + v
	}
	if cfg, err := LoadSettings(); err == nil && cfg.RelayAddr != "" {
		return cfg.RelayAddr
	}
	return ":" + defaultRelayPort
}

// DefaultAgentName is the agent recorded when nothing more specific is known.
func DefaultAgentName() string {
	if v := strings.TrimSpace(os.Getenv("DA")); v != "" {
		return v
	}
	if cfg, err := LoadSettings(); err == nil && cfg.AgentName != "" {
		return cfg.AgentName
	}
	return defaultAgentName
}

// AgentOverride returns the PAI_AGENT override, or "" when unset.
func AgentOverride() string {
	return strings.TrimSpace(os.Getenv("PAI_AGENT"))
}

// IsSubagentSession reports whether the current process runs inside a sub-agent.
func IsSubagentSession() bool {
	if _, ok := os.LookupEnv("KIRO_AGENT"); ok {
		return true
	}
	return os.Getenv("SUBAGENT") == "true"
}

// ArchivePath resolves the SQLite archive used by the relay service.
func ArchivePath(root string) string {
	if cfg, err := LoadSettings(); err == nil && cfg.ArchivePath != "" {
		return expandHome(cfg.ArchivePath)
	}
	return filepath.Join(root, "memory", "signals", "events.db")
}

// Vocabularies returns the configured keyword overrides (zero value when unset).
func Vocabularies() VocabularySettings {
	cfg, err := LoadSettings()
	if err != nil {
		return VocabularySettings{}
	}
	return cfg.Vocabularies
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
