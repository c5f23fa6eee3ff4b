package platform

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger with a console writer on stderr.
// Unknown levels fall back to info.
func InitLogger(level string) zerolog.Logger {
	return initLogger(os.Stderr, level)
}

func initLogger(out io.Writer, level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: out}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	log.Logger = logger
	return logger
}

// LogFatal logs err and exits.
func LogFatal(logger zerolog.Logger, msg string, err error) {
	logger.Error().Err(err).Msg(msg)
	os.Exit(1)
}
