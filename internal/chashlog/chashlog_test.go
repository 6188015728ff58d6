package chashlog

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/dl/chash"
)

func TestNewAssignsDistinctRunIDs(t *testing.T) {
	a := New(log.InfoLevel)
	b := New(log.InfoLevel)
	if a.RunID == b.RunID {
		t.Error("two Loggers got the same run id")
	}
}

func TestProgressSatisfiesProgressFunc(t *testing.T) {
	l := New(log.WarnLevel)
	var pf chash.ProgressFunc = l.Progress
	pf("rebalance", 1, 4) // must not panic
}
