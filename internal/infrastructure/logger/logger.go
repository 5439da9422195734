package logger

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Every line carries the service tag so aggregated platform output stays
// attributable to chat-api.
const serviceName = "chat-api"

var (
	globalLogger zerolog.Logger
	once         sync.Once
)

// GetLogger returns the process-wide logger. Until New runs it falls back to
// console output at info level.
func GetLogger() zerolog.Logger {
	once.Do(func() {
		globalLogger = newBase(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).Level(zerolog.InfoLevel)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	return globalLogger
}

// New configures the process logger from LOG_LEVEL and LOG_FORMAT and
// replaces the default built by GetLogger.
func New(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, err
	}

	var out io.Writer
	switch strings.ToLower(format) {
	case "json":
		out = os.Stdout
	case "console":
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	default:
		return zerolog.Logger{}, errors.New("unsupported log format: " + format)
	}

	zerolog.SetGlobalLevel(lvl)
	globalLogger = newBase(out).Level(lvl)
	return globalLogger, nil
}

func newBase(out io.Writer) zerolog.Logger {
	return zerolog.New(out).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
