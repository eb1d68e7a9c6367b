// Package logging is uber's diagnostic logger, a thin layer over
// charmbracelet/log.
//
// Diagnostics (debug traces of every child process, load details) go to
// stderr. Stdout belongs to the user-facing report lines and to the child
// process started by "uber run".
//
//	logging.Setup(verbose, quiet, jsonFormat) // once, in PersistentPreRunE
//	var logger = logging.New("venv")
//	logger.Debug("creating environment", "name", name)
//
// Setup must run before New: charmbracelet/log copies the default logger's
// settings into a child at creation time.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Level aliases so callers do not import charmbracelet/log directly.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

// Setup configures the default logger. Quiet wins over verbose.
//
// The default level is Warn rather than Info: uber's progress is already
// reported on stdout, so Info-level diagnostics are only shown with -v.
func Setup(verbose, quiet, jsonFormat bool) {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(verbose && !quiet)

	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New creates a logger with the given component prefix. An empty component
// produces a logger without a prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput overrides the default logger's writer. Used by tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
