// Package main implements the verilens CLI: submit text, an image or a
// video for AI-backed verification and browse the local verdict history.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"verilens/internal/config"
	"verilens/internal/gemini"
	"verilens/internal/logging"
	"verilens/internal/sampler"
	"verilens/internal/store"
	"verilens/internal/verify"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiKey     string

	// Loaded configuration, available to all subcommands after PreRun.
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "verilens",
	Short: "verilens - AI-backed content verification",
	Long: `verilens checks text claims, images and videos for factual accuracy,
manipulation and deepfake markers using the Gemini API.

Verdicts are normalized into a structured truth report and kept in a
local history (most recent 50).

Examples:
  verilens analyze text "Moon landing was faked"
  verilens analyze image ./screenshot.jpg
  verilens analyze video ./clip.mp4
  verilens history`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if apiKey != "" {
			cfg.Gemini.APIKey = apiKey
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}

		if err := logging.Initialize(filepath.Dir(path), logging.Settings{
			DebugMode:  cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		}); err != nil {
			logger.Warn("file logging disabled", zap.Error(err))
		}
		logging.Boot("verilens starting (config: %s)", path)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Shutdown()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newAnalyzer wires the full pipeline from the loaded config. The caller
// must Close the returned store.
func newAnalyzer(ctx context.Context) (*verify.Analyzer, store.Store, error) {
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		TextModel:  cfg.Gemini.TextModel,
		ImageModel: cfg.Gemini.ImageModel,
		VideoModel: cfg.Gemini.VideoModel,
		Timeout:    cfg.GeminiTimeout(),
		MaxRetries: cfg.Gemini.MaxRetries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set GEMINI_API_KEY or gemini.api_key in config)", err)
	}

	frames := sampler.NewFFmpegSampler(sampler.Config{
		FFmpegPath:   cfg.Sampler.FFmpegPath,
		FFprobePath:  cfg.Sampler.FFprobePath,
		ProbeTimeout: cfg.ProbeTimeout(),
		SeekTimeout:  cfg.SeekTimeout(),
	})

	history, err := store.NewSQLiteStore(cfg.History.DatabasePath, cfg.History.MaxEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history store: %w", err)
	}

	return verify.NewAnalyzer(client, frames, history), history, nil
}

// openHistory opens just the store, for history subcommands.
func openHistory() (store.Store, error) {
	return store.NewSQLiteStore(cfg.History.DatabasePath, cfg.History.MaxEntries)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.verilens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides config and environment)")

	rootCmd.AddCommand(analyzeCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
