// Package logger builds the stderr diagnostic logger.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Level picks a log level from the -v/-q flags. Quiet wins.
func Level(verbose, quiet bool) log.Level {
	switch {
	case quiet:
		return log.ErrorLevel
	case verbose:
		return log.DebugLevel
	default:
		return log.WarnLevel
	}
}

// New returns a logger writing to w at the given level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "varcop",
		ReportTimestamp: level == log.DebugLevel,
		TimeFormat:      "15:04:05.000",
	})
}

// Default returns a stderr logger for the given flags.
func Default(verbose, quiet bool) *log.Logger {
	return New(os.Stderr, Level(verbose, quiet))
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return New(io.Discard, log.FatalLevel)
}
