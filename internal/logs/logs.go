package logs

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/smithy-go/logging"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const logFile = "violet.log"

var (
	fileOnce   sync.Once
	fileLogger *slog.Logger
)

// FileLogger returns a JSON logger appending to violet.log in the working
// directory. Used for the durable execution record of atomic runs.
func FileLogger() *slog.Logger {
	fileOnce.Do(func() {
		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			// Fall back to stderr rather than lose the record entirely.
			fileLogger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
			return
		}
		opts := &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		}
		fileLogger = slog.New(slog.NewJSONHandler(f, opts))
	})
	return fileLogger
}

// SdkLogger adapts the AWS SDK's log stream onto the file logger.
func SdkLogger() logging.Logger {
	return logging.LoggerFunc(func(classification logging.Classification, format string, v ...interface{}) {
		logger := FileLogger()
		switch classification {
		case logging.Warn:
			logger.Warn(format, v...)
		default:
			logger.Debug(format, v...)
		}
	})
}

// ConsoleLogger returns the colorized stderr logger and installs it as the
// slog default.
func ConsoleLogger() *slog.Logger {
	return ConsoleLoggerWithLevel(slog.LevelInfo)
}

func ConsoleLoggerWithLevel(level slog.Level) *slog.Logger {
	w := os.Stderr

	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	}))

	slog.SetDefault(logger)
	return logger
}
