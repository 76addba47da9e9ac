package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns the bootstrap logger used before configuration is loaded.
// The application logger is built from the configured level via SetLevel.
func New() zerolog.Logger {
	return SetLevel(zerolog.InfoLevel)
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(level)

	return logger
}
