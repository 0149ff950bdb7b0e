package logger

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// Logs go to stderr; stdout is reserved for the ranking summary.
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(zerolog.DebugLevel)

	return logger
}

// ForRun narrows the logger to the configured level and tags it with a fresh run id.
func ForRun(logger zerolog.Logger, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return logger, err
	}
	return logger.Level(lvl).With().Str("run_id", uuid.New().String()).Logger(), nil
}

var Module = fx.Provide(New)
