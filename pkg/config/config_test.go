package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefaultsWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 16000, cfg.VAD.SampleRate)
	require.Equal(t, uint64(5000), cfg.Buffer.MaxBufferDurationMs)
	require.Equal(t, "en", cfg.Pipeline.SourceLanguage)
}

func TestLoadReadsYamlOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("pipeline:\n  target_language: \"fr\"\nvoices:\n  - \"alpha\"\n  - \"beta\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "fr", cfg.Pipeline.TargetLanguage)
	require.Equal(t, []string{"alpha", "beta"}, cfg.Voices)
}

func TestLoadReadsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	t.Setenv("LINGUA_PIPELINE_TARGET_LANGUAGE", "ja")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "ja", cfg.Pipeline.TargetLanguage)
}
