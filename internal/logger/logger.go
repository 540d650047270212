package logger

import (
	"log/slog"
	"os"
)

// defaultLogger serves callers that run before Init, such as tests.
var defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init installs the process-wide logger. Development and debug runs get a
// human-readable text handler, everything else JSON. Call it once at startup,
// before any goroutine logs.
func Init(env string, debug bool) {
	defaultLogger = slog.New(newHandler(env, debug))
	slog.SetDefault(defaultLogger)
}

func newHandler(env string, debug bool) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if debug || env == "development" {
		opts.Level = slog.LevelDebug
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func Default() *slog.Logger {
	return defaultLogger
}

func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
