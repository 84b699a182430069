// Package logging provides config-driven categorized file-based logging
// for verilens. Logs are written to <base>/logs/ with one file per
// category. When debug mode is off, nothing is written.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot       Category = "boot"       // Startup and wiring
	CategoryAPI        Category = "api"        // Gemini API calls
	CategorySampler    Category = "sampler"    // Frame extraction
	CategoryNormalizer Category = "normalizer" // Response normalization
	CategoryStore      Category = "store"      // History persistence
	CategoryPipeline   Category = "pipeline"   // Analysis orchestration
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Settings mirrors config.LoggingConfig to avoid a circular import.
type Settings struct {
	DebugMode  bool
	Level      string
	Categories map[string]bool
}

// Logger wraps a standard logger bound to one category file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers  = make(map[Category]*Logger)
	mu       sync.Mutex
	logsDir  string
	settings Settings
	enabled  bool
	logLevel int
)

// Initialize sets up the logging directory and applies settings.
// Should be called once at startup; logging is a no-op before that.
func Initialize(baseDir string, s Settings) error {
	mu.Lock()
	defer mu.Unlock()

	settings = s
	enabled = s.DebugMode
	logLevel = parseLevel(s.Level)

	if !enabled {
		return nil
	}
	logsDir = filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return nil
}

// Shutdown closes all open log files.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

func parseLevel(s string) int {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func categoryEnabled(cat Category) bool {
	if !enabled {
		return false
	}
	if settings.Categories == nil {
		return true
	}
	on, listed := settings.Categories[string(cat)]
	if !listed {
		return true
	}
	return on
}

// Get returns the logger for a category, creating its file lazily.
func Get(cat Category) *Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[cat]; ok {
		return l
	}

	l := &Logger{category: cat}
	if categoryEnabled(cat) && logsDir != "" {
		path := filepath.Join(logsDir, string(cat)+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			l.file = f
			l.logger = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
		}
	}
	loggers[cat] = l
	return l
}

func (l *Logger) write(level int, levelName, format string, args ...interface{}) {
	if l.logger == nil || level < logLevel {
		return
	}
	l.logger.Printf("[%s] %s", levelName, fmt.Sprintf(format, args...))
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "INFO", format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, "WARN", format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, "ERROR", format, args...)
}

// Category convenience helpers: one Info and one Debug entry point per
// subsystem.

func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }
func API(format string, args ...interface{})  { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...interface{}) {
	Get(CategoryAPI).Debug(format, args...)
}
func Sampler(format string, args ...interface{}) { Get(CategorySampler).Info(format, args...) }
func SamplerDebug(format string, args ...interface{}) {
	Get(CategorySampler).Debug(format, args...)
}
func Normalizer(format string, args ...interface{}) {
	Get(CategoryNormalizer).Info(format, args...)
}
func Store(format string, args ...interface{})      { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }
func Pipeline(format string, args ...interface{})   { Get(CategoryPipeline).Info(format, args...) }
func PipelineDebug(format string, args ...interface{}) {
	Get(CategoryPipeline).Debug(format, args...)
}

// Timer measures the duration of an operation for performance logging.
type Timer struct {
	category Category
	name     string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(cat Category, name string) *Timer {
	return &Timer{category: cat, name: name, start: time.Now()}
}

// Stop logs the elapsed time for the operation.
func (t *Timer) Stop() {
	Get(t.category).Debug("%s took %s", t.name, time.Since(t.start))
}
