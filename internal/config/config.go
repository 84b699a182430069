// Package config loads verilens configuration from a YAML file with
// environment-variable overrides. Missing files are not an error; every
// field has a usable default so the tool works with nothing but an API key.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigDirName is the per-user directory holding config and history.
const ConfigDirName = ".verilens"

// ConfigFileName is the YAML config file inside ConfigDirName.
const ConfigFileName = "config.yaml"

// Config holds all verilens configuration.
type Config struct {
	// Gemini API settings
	Gemini GeminiConfig `yaml:"gemini"`

	// Video frame sampling
	Sampler SamplerConfig `yaml:"sampler"`

	// Local verification history
	History HistoryConfig `yaml:"history"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the AI capability boundary.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`

	// Per-modality models. Text analysis needs search grounding; media
	// analysis needs vision input, so they default to different models.
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
	VideoModel string `yaml:"video_model"`

	// Timeout bounds a single generate call (duration string, e.g. "90s").
	Timeout string `yaml:"timeout"`

	// MaxRetries applies to rate-limit and transient server errors.
	MaxRetries int `yaml:"max_retries"`
}

// SamplerConfig configures the ffmpeg-based frame sampler.
type SamplerConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// ProbeTimeout bounds the duration probe; SeekTimeout bounds each of
	// the five frame extractions individually.
	ProbeTimeout string `yaml:"probe_timeout"`
	SeekTimeout  string `yaml:"seek_timeout"`
}

// HistoryConfig configures the verification result store.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path"`

	// MaxEntries caps the history; older entries are evicted on insert.
	MaxEntries int `yaml:"max_entries"`
}

// LoggingConfig controls the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns a Config with every field at its documented default.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ConfigDirName)
	return &Config{
		Gemini: GeminiConfig{
			TextModel:  "gemini-3-flash-preview",
			ImageModel: "gemini-2.5-flash-image",
			VideoModel: "gemini-2.5-flash",
			Timeout:    "90s",
			MaxRetries: 3,
		},
		Sampler: SamplerConfig{
			FFmpegPath:   "ffmpeg",
			FFprobePath:  "ffprobe",
			ProbeTimeout: "15s",
			SeekTimeout:  "30s",
		},
		History: HistoryConfig{
			DatabasePath: filepath.Join(base, "history.db"),
			MaxEntries:   50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, merges it over the defaults and
// applies environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	cfg.fillZeroValues()
	return cfg, nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ConfigDirName, ConfigFileName)
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	// Fallback name used elsewhere in the genai ecosystem.
	if c.Gemini.APIKey == "" {
		if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
			c.Gemini.APIKey = v
		}
	}
	if v := os.Getenv("VERILENS_TEXT_MODEL"); v != "" {
		c.Gemini.TextModel = v
	}
	if v := os.Getenv("VERILENS_IMAGE_MODEL"); v != "" {
		c.Gemini.ImageModel = v
	}
	if v := os.Getenv("VERILENS_VIDEO_MODEL"); v != "" {
		c.Gemini.VideoModel = v
	}
	if v := os.Getenv("VERILENS_HISTORY_DB"); v != "" {
		c.History.DatabasePath = v
	}
	if v := os.Getenv("VERILENS_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}

// fillZeroValues restores defaults clobbered by explicit zero values in
// the YAML file, so a partial config never disables core behavior.
func (c *Config) fillZeroValues() {
	d := Default()
	if c.Gemini.TextModel == "" {
		c.Gemini.TextModel = d.Gemini.TextModel
	}
	if c.Gemini.ImageModel == "" {
		c.Gemini.ImageModel = d.Gemini.ImageModel
	}
	if c.Gemini.VideoModel == "" {
		c.Gemini.VideoModel = d.Gemini.VideoModel
	}
	if c.Gemini.Timeout == "" {
		c.Gemini.Timeout = d.Gemini.Timeout
	}
	if c.Gemini.MaxRetries <= 0 {
		c.Gemini.MaxRetries = d.Gemini.MaxRetries
	}
	if c.Sampler.FFmpegPath == "" {
		c.Sampler.FFmpegPath = d.Sampler.FFmpegPath
	}
	if c.Sampler.FFprobePath == "" {
		c.Sampler.FFprobePath = d.Sampler.FFprobePath
	}
	if c.Sampler.ProbeTimeout == "" {
		c.Sampler.ProbeTimeout = d.Sampler.ProbeTimeout
	}
	if c.Sampler.SeekTimeout == "" {
		c.Sampler.SeekTimeout = d.Sampler.SeekTimeout
	}
	if c.History.DatabasePath == "" {
		c.History.DatabasePath = d.History.DatabasePath
	}
	if c.History.MaxEntries <= 0 {
		c.History.MaxEntries = d.History.MaxEntries
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// GeminiTimeout parses the generate-call timeout, falling back to 90s.
func (c *Config) GeminiTimeout() time.Duration {
	return parseDuration(c.Gemini.Timeout, 90*time.Second)
}

// ProbeTimeout parses the ffprobe timeout, falling back to 15s.
func (c *Config) ProbeTimeout() time.Duration {
	return parseDuration(c.Sampler.ProbeTimeout, 15*time.Second)
}

// SeekTimeout parses the per-frame extraction timeout, falling back to 30s.
func (c *Config) SeekTimeout() time.Duration {
	return parseDuration(c.Sampler.SeekTimeout, 30*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Save writes the config back to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
