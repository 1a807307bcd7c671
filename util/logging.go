package util

import (
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures the default logger and returns it. Unknown levels
// fall back to info.
func SetupLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          Name,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)

	log.SetDefault(logger)
	return logger
}
