package app

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ConfigDir returns ~/.config/pai/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pai"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

// LoadDotEnv loads ~/.config/pai/.env into the process environment.
// Variables already present in the environment are never overridden.
// A missing file is not an error.
func LoadDotEnv() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	err = godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

const defaultConfig = `# pai configuration
# Run: pai --help

# Root of the memory tree (memory/LEARNING, memory/history, skills/CORE).
# Can also be set via PAI_DIR, KIRO_DIR or --root.
# root_dir: ~/.kiro

# IANA zone used for timestamps and week numbering. Env: TIME_ZONE.
# time_zone: America/Chicago

# Relay endpoint hooks post events to. Env: PAI_OBSERVABILITY_URL.
# relay_url: http://localhost:4000/events

# Listen address for 'pai relay serve'. Env: PAI_OBSERVABILITY_PORT (port only).
# relay_addr: :4000

# Default agent name recorded on events. Env: DA.
# agent_name: kiro

# SQLite archive for relayed events.
# archive_path: ~/.kiro/memory/signals/events.db

# Keyword tables used by the learning classifier and the weekly synthesis.
# Any list given here replaces the built-in list.
# vocabularies:
#   learning_indicators: [problem, solved, discovered]
#   system: [hook, config, permission]
#   algorithm: [refactor, test, performance]
#   patterns: [hook, api, config]
#   unit_words: [items, files, seconds]
`
