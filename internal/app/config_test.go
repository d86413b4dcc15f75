package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDir_UsesHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "pai"), dir)
}

func TestEnsureConfigDir_CreatesDefaultConfigOnlyWhenMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	err := EnsureConfigDir()
	require.NoError(t, err)

	dir, err := ConfigDir()
	require.NoError(t, err)

	configFile := filepath.Join(dir, "config.yaml")
	b, err := os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, defaultConfig, string(b))

	custom := []byte("root_dir: /tmp/custom\n")
	require.NoError(t, os.WriteFile(configFile, custom, 0o600))

	err = EnsureConfigDir()
	require.NoError(t, err)

	b, err = os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, string(custom), string(b))
}

func TestLoadDotEnv_DoesNotOverrideEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TIME_ZONE", "UTC")
	t.Setenv("PAI_DOTENV_TEST", "")
	require.NoError(t, os.Unsetenv("PAI_DOTENV_TEST"))

	dir := filepath.Join(home, ".config", "pai")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("TIME_ZONE=Asia/Tokyo\nPAI_DOTENV_TEST=loaded\n"), 0o600))

	require.NoError(t, LoadDotEnv())
	require.Equal(t, "UTC", os.Getenv("TIME_ZONE"))
	require.Equal(t, "loaded", os.Getenv("PAI_DOTENV_TEST"))
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, LoadDotEnv())
}
