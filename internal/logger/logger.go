package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var once sync.Once

// Options controls InitLogging. Zero values mean stdout only, info level, JSON lines.
type Options struct {
	FilePath string
	Level    string
	Format   string
}

// InitLogging configures the global zerolog logger. Only the first call has effect.
func InitLogging(opts Options) {
	once.Do(func() {
		var stdout io.Writer = os.Stdout
		if strings.EqualFold(opts.Format, "console") {
			stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		}
		writers := []io.Writer{stdout}

		if opts.FilePath != "" {
			file, err := os.OpenFile(opts.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
			if err != nil {
				// We can't use the logger yet, so just print to stderr
				os.Stderr.WriteString("Failed to open log file: " + err.Error() + "\n")
			} else {
				writers = append(writers, file)
			}
		}

		level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil || opts.Level == "" {
			level = zerolog.InfoLevel
		}

		multi := zerolog.MultiLevelWriter(writers...)
		logger := zerolog.New(multi).With().Timestamp().Logger().Level(level)
		globalLogger = logger
		log.Logger = logger
	})
}

// WithLogger returns a new context containing the logger with additional fields.
func WithLogger(ctx context.Context, fields map[string]interface{}) context.Context {
	l := getLogger(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// getLogger extracts the zerolog logger from the context, falling back to the global logger.
func getLogger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	// zerolog.Ctx returns a disabled logger if none is in context
	if l.GetLevel() == zerolog.Disabled {
		return &globalLogger
	}
	return l
}

// DebugLog logs a debug level message.
func DebugLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Debug().Msgf(msg, args...)
}

// InfoLog logs an info level message.
func InfoLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Info().Msgf(msg, args...)
}

// WarnLog logs a warning level message.
func WarnLog(ctx context.Context, msg string, args ...interface{}) {
	getLogger(ctx).Warn().Msgf(msg, args...)
}

// ErrorLog logs an error level message. The first error among args is also
// attached as the structured "error" field.
func ErrorLog(ctx context.Context, msg string, args ...interface{}) {
	ev := getLogger(ctx).Error()
	for _, a := range args {
		if err, ok := a.(error); ok {
			ev = ev.Err(err)
			break
		}
	}
	if len(args) > 0 {
		ev.Msgf(msg, args...)
		return
	}
	ev.Msg(msg)
}

// RowFailure logs a row that was skipped during an import.
func RowFailure(ctx context.Context, line, employeeNumber int, err error) {
	getLogger(ctx).Warn().
		Int("line", line).
		Int("employee_number", employeeNumber).
		Err(err).
		Msg("row skipped")
}

// BatchFailure logs a bulk write that was rejected as a whole.
func BatchFailure(ctx context.Context, firstLine, lastLine, size int, err error) {
	getLogger(ctx).Error().
		Int("first_line", firstLine).
		Int("last_line", lastLine).
		Int("size", size).
		Err(err).
		Msg("batch failed")
}
