package logger

import (
	"log/slog"
	"os"
	"strings"
)

var log *slog.Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init sets up the global logger. Production logs JSON at info level,
// everything else logs text at debug level.
func Init(environment string) {
	var handler slog.Handler

	if strings.ToLower(environment) == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	log = slog.New(handler)
	slog.SetDefault(log)
}

func Debug(msg string, args ...any) {
	log.Debug(msg, normalize(args)...)
}

func Info(msg string, args ...any) {
	log.Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	log.Error(msg, normalize(args)...)
}

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	log.Error(msg, normalize(args)...)
	os.Exit(1)
}

// normalize lets call sites pass a bare error (or any single value) without a
// key. slog would otherwise render it as !BADKEY.
func normalize(args []any) []any {
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			return []any{slog.Any("error", err)}
		}
		if _, ok := args[0].(slog.Attr); ok {
			return args
		}
		return []any{slog.Any("detail", args[0])}
	}

	return args
}
