package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// OperationTimer measures an operation for debug logging. Use with defer:
//
//	defer utils.OperationTimer("import_export", log)()
//
// Engine operations are in-memory recomputes and single-file imports, so
// anything over a second gets a warning.
func OperationTimer(operation string, log zerolog.Logger) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start)

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")

		if duration > time.Second {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Msg("Slow operation detected")
		}
	}
}
