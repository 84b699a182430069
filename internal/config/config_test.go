package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "gemini-3-flash-preview", cfg.Gemini.TextModel)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Gemini.ImageModel)
	assert.Equal(t, 50, cfg.History.MaxEntries)
	assert.Equal(t, 90*time.Second, cfg.GeminiTimeout())
	assert.Equal(t, 15*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, 30*time.Second, cfg.SeekTimeout())
}

func TestLoad_FileMergesOverDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
gemini:
  api_key: file-key
  text_model: custom-text
  timeout: 45s
history:
  max_entries: 10
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
	assert.Equal(t, "custom-text", cfg.Gemini.TextModel)
	// Unset fields keep defaults.
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Gemini.ImageModel)
	assert.Equal(t, 45*time.Second, cfg.GeminiTimeout())
	assert.Equal(t, 10, cfg.History.MaxEntries)
}

func TestLoad_MalformedYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gemini: ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestParseDuration_Fallbacks(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("garbage", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("-5s", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Gemini.APIKey = "saved-key"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "saved-key", loaded.Gemini.APIKey)
	assert.Equal(t, cfg.Gemini.TextModel, loaded.Gemini.TextModel)
}
