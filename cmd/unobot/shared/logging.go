package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures console logging on stderr.
func SetupLogger(debug bool) *log.Logger {
	return NewLogger(os.Stderr, debug)
}

// NewLogger configures logging to an arbitrary writer.
func NewLogger(w io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}
