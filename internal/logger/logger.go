package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// LogDir holds the files written in TUI mode, where stderr belongs to the dashboard
const LogDir = "logs"

var (
	log     = zerolog.Nop()
	logFile *os.File
)

// Init sends human-readable logs to stderr, keeping stdout for command output
func Init() {
	SetOutput(os.Stderr)
}

// SetOutput sends human-readable logs to w. DEBUG in the environment enables debug lines.
func SetOutput(w io.Writer) {
	console := zerolog.ConsoleWriter{
		Out:           w,
		TimeFormat:    time.RFC3339,
		FormatLevel:   func(i interface{}) string { return fmt.Sprintf("[%s]", i) },
		FormatMessage: func(i interface{}) string { return fmt.Sprint(i) },
	}
	log = zerolog.New(console).With().Timestamp().Logger()
	applyLevel()
}

func applyLevel() {
	level := zerolog.InfoLevel
	if _, ok := os.LookupEnv("DEBUG"); ok {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

// FileName is the TUI-mode log file for a run started at t
func FileName(t time.Time) string {
	return filepath.Join(LogDir, fmt.Sprintf("crawlctl_%s.log", t.Format("2006-01-02_15-04-05")))
}

// InitFileOnly writes JSON lines to a fresh file under LogDir and nowhere else
func InitFileOnly() error {
	if err := os.MkdirAll(LogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", LogDir, err)
	}

	path := FileName(time.Now())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	Close()
	logFile = f
	log = zerolog.New(f).With().Timestamp().Logger()
	applyLevel()

	Info("Logging to %s", path)
	return nil
}

// Close releases the log file opened by InitFileOnly, if any
func Close() {
	if logFile == nil {
		return
	}
	if err := logFile.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
	logFile = nil
}

func Debug(msg string, args ...interface{}) {
	log.Debug().Msgf(msg, args...)
}

func Info(msg string, args ...interface{}) {
	log.Info().Msgf(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	log.Warn().Msgf(msg, args...)
}

func Error(msg string, args ...interface{}) {
	log.Error().Msgf(msg, args...)
}

// Fatal logs and exits with status 1
func Fatal(msg string, args ...interface{}) {
	log.Fatal().Msgf(msg, args...)
}
