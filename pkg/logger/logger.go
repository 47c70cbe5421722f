// backend-go/pkg/logger/logger.go
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	Log = zerolog.New(newWriter("debug")).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Caller().
		Logger()
}

func newWriter(mode string) io.Writer {
	if mode == "debug" {
		// Console output with color for local development.
		return zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}
	return os.Stdout
}

// SetLevel adjusts the global log level and output format based on the
// server mode. Release mode emits structured JSON at info level, debug mode
// keeps the colored console writer at debug level. Anything else is treated
// as a zerolog level name.
func SetLevel(mode string) {
	level := zerolog.InfoLevel
	switch mode {
	case "debug":
		level = zerolog.DebugLevel
	case "release", "test":
		level = zerolog.InfoLevel
	default:
		parsed, err := zerolog.ParseLevel(mode)
		if err != nil {
			Log.Warn().Str("mode", mode).Msg("unknown log mode, defaulting to info")
		} else {
			level = parsed
		}
	}

	zerolog.SetGlobalLevel(level)
	Log = Log.Output(newWriter(mode)).Level(level)
}
