// Package cli implements the framecraft command-line interface.
//
// Commands work on template files in place (template new, frame, fit,
// migrate, preview, edit), on the shared template store (template push,
// pull, ls, rm), on the image cache (cache), or serve the HTTP API
// (serve). The command tree is built with cobra; human-readable status
// goes to stdout through lipgloss styles, diagnostics go to a
// charmbracelet logger on stderr.
//
// Pass --verbose (-v) to see debug logs, including cache and fetch
// events.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/framecraft/pkg/observability"
)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// EnableEventLog routes library events (template loads, cache traffic,
// image fetches) to the CLI logger. They are logged at debug level.
func (c *CLI) EnableEventLog() {
	observability.NewLogHooks(c.Logger).Install()
}

// stopwatch logs how long a step took once it finishes.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// lap logs msg at debug level with an "elapsed" field.
func (s stopwatch) lap(msg string, keyvals ...any) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	s.logger.Debug(msg, append(keyvals, "elapsed", elapsed)...)
}
