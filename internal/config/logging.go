package config

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger creates the process logger: colored text on stderr, plus JSON
// to logFile when one is given. The returned cleanup closes the file.
//
// Stdout is never written to; the MCP stdio transport owns it.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	console := tint.NewHandler(os.Stderr, &tint.Options{Level: level})
	if logFile == "" {
		return slog.New(console), func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger := slog.New(console)
		logger.Error("failed to open log file, using stderr only", "error", err, "file", logFile)
		return logger, func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(console, fileHandler)), file.Close
}

// SetupLoggerWithWriters creates the same fan-out over custom writers.
func SetupLoggerWithWriters(stderr, file io.Writer, level slog.Level) *slog.Logger {
	console := tint.NewHandler(stderr, &tint.Options{Level: level, NoColor: true})
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(slogmulti.Fanout(console, fileHandler))
}
