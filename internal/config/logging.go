package config

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates the merf dual-output logger: text to stderr for the
// person running the CLI, JSON to file for anything scraping the log.
// Every record carries an "app" attribute so merf lines are filterable in
// a shared log file. Returns the logger and a cleanup function to close
// the file.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fall back to stderr-only if file fails
		slog.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return withDefaultAttrs(slog.New(stderrHandler)), func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: level,
	})

	logger := withDefaultAttrs(slog.New(slogmulti.Fanout(stderrHandler, fileHandler)))

	cleanup := func() error {
		return file.Close()
	}

	return logger, cleanup
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	stderrHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return withDefaultAttrs(slog.New(slogmulti.Fanout(stderrHandler, fileHandler)))
}

func withDefaultAttrs(logger *slog.Logger) *slog.Logger {
	return logger.With(slog.String("app", "merf"))
}
