// Package chashlog wires charmbracelet/log into a per-run logger: every
// process gets a random run id so a fleet of chashdemo instances tailing
// the same aggregator can be told apart in the log stream.
package chashlog

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Logger wraps a charmbracelet/log.Logger with a run id attached to every
// line it emits.
type Logger struct {
	*log.Logger
	RunID uuid.UUID
}

// New creates a Logger writing to stderr at the given level, stamped with
// a fresh run id.
func New(level log.Level) *Logger {
	runID := uuid.New()
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	l = l.With("run", runID.String()[:8])
	return &Logger{Logger: l, RunID: runID}
}

// Progress adapts a Logger into the chash.ProgressFunc shape, so
// construction and rebalance progress lands in the same log stream as
// everything else.
func (l *Logger) Progress(stage string, done, total int) {
	l.Debug("progress", "stage", stage, "done", done, "total", total)
}
