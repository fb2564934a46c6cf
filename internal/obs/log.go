package obs

import (
	"log"
	"log/slog"
	"os"
	"sync"
)

var (
	eventLoggerOnce sync.Once
	eventLogger     *log.Logger
)

// Setup builds the application logger for the given environment. Local runs
// get a human-readable text handler at debug level, everything else emits
// JSON suitable for log shipping. The returned logger is also installed as
// the slog default.
func Setup(env string) *slog.Logger {
	var logger *slog.Logger
	switch env {
	case "local":
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	slog.SetDefault(logger)
	return logger
}

// EventLogger returns the shared line-oriented logger backing the audit
// event stream. Audit entries are pre-marshaled JSON, so this logger carries
// no prefix and no flags.
func EventLogger() *log.Logger {
	eventLoggerOnce.Do(func() {
		eventLogger = log.New(os.Stdout, "", 0)
	})
	return eventLogger
}
