package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu  sync.RWMutex
	log *slog.Logger
)

// Init configures the global logger. Development uses a text handler at
// debug level, everything else JSON at info level.
func Init(environment string) {
	mu.Lock()
	defer mu.Unlock()

	if environment == "development" {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		return
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if log == nil {
		return slog.Default()
	}
	return log
}

// normalize allows calls like logger.Error("something failed", err)
// alongside regular key-value pairs.
func normalize(args []any) []any {
	if len(args)%2 == 0 {
		return args
	}

	last := args[len(args)-1]
	fixed := make([]any, 0, len(args)+1)
	fixed = append(fixed, args[:len(args)-1]...)

	if err, ok := last.(error); ok {
		return append(fixed, "error", err)
	}
	return append(fixed, "detail", last)
}

func Debug(msg string, args ...any) {
	get().Debug(msg, normalize(args)...)
}

func Info(msg string, args ...any) {
	get().Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	get().Error(msg, normalize(args)...)
}

// Fatal logs at error level and exits the process.
func Fatal(msg string, args ...any) {
	get().Error(msg, normalize(args)...)
	os.Exit(1)
}
