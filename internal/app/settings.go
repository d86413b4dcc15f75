package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	RootDir      string             `yaml:"root_dir"`
	TimeZone     string             `yaml:"time_zone"`
	RelayURL     string             `yaml:"relay_url"`
	RelayAddr    string             `yaml:"relay_addr"`
	AgentName    string             `yaml:"agent_name"`
	ArchivePath  string             `yaml:"archive_path"`
	Vocabularies VocabularySettings `yaml:"vocabularies"`
}

// VocabularySettings overrides the built-in keyword tables. Empty lists keep the defaults.
type VocabularySettings struct {
	LearningIndicators []string `yaml:"learning_indicators"`
	System             []string `yaml:"system"`
	Algorithm          []string `yaml:"algorithm"`
	Patterns           []string `yaml:"patterns"`
	UnitWords          []string `yaml:"unit_words"`
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// rootOverrideMu and rootOverride implement a mutex-protected process-wide override for CLI --root.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	rootOverrideMu sync.RWMutex
	rootOverride   string
)

// SetRootOverride sets a process-wide root directory override.
// Intended for CLI flag support (e.g. --root).
func SetRootOverride(path string) {
	rootOverrideMu.Lock()
	rootOverride = path
	rootOverrideMu.Unlock()
}

func getRootOverride() string {
	rootOverrideMu.RLock()
	v := rootOverride
	rootOverrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/pai/config.yaml
// 2) /etc/pai/config.yaml
// 3) ./config.yaml
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		dir, err := ConfigDir()
		if err != nil {
			settingsErr = err
			return
		}

		for _, path := range settingsPaths(dir) {
			s, err := loadSettingsFile(path)
			if err == nil {
				settings = s
				return
			}
			if !errors.Is(err, os.ErrNotExist) {
				settingsErr = err
				return
			}
		}
	})

	return settings, settingsErr
}

func settingsPaths(configDir string) []string {
	return []string{
		filepath.Join(configDir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "pai", "config.yaml"),
		"config.yaml",
	}
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
