package ui

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"gharchiver/pkg/archive"
	errs "gharchiver/pkg/errors"
)

// Tracker reports archive progress on a Console. It implements
// archive.Hook.
type Tracker struct {
	console *Console
	verbose bool
	bytes   atomic.Int64
}

// NewTracker returns a Tracker. Stored resources are listed only when
// verbose; failures are always printed.
func NewTracker(console *Console, verbose bool) *Tracker {
	return &Tracker{console: console, verbose: verbose}
}

// OnStart implements archive.Hook
func (t *Tracker) OnStart(name string) {
	if t.verbose {
		fmt.Fprintf(t.console.out, "%s %s\n", t.console.magenta.Render("→"), t.console.Dim(name))
	}
}

// OnOutcome implements archive.Hook
func (t *Tracker) OnOutcome(o archive.Outcome) {
	switch {
	case o.State.Failed():
		state := string(o.State)
		if errs.IsCursorStall(o.Err) {
			state += ", cursor stall"
		}
		fmt.Fprintf(t.console.out, "%s %s [%s]: %v\n",
			t.console.red.Render("✗ FAILED"), o.Resource, state, o.Err)
	case t.verbose:
		fmt.Fprintf(t.console.out, "%s %s %s\n",
			t.console.green.Render("✓"), o.Resource, t.console.Dim(formatDuration(o.Duration)))
	}
}

// AddBytes counts downloaded bytes toward the summary
func (t *Tracker) AddBytes(n int64) {
	t.bytes.Add(n)
}

// Bytes returns the downloaded byte count
func (t *Tracker) Bytes() int64 {
	return t.bytes.Load()
}

// Summary prints the final status line for a run
func (t *Tracker) Summary(username, root string, report *archive.Report) {
	stored, failed := report.Counts()
	detail := fmt.Sprintf("%d resources stored, %s downloaded in %s",
		stored, humanize.Bytes(uint64(t.Bytes())), formatDuration(report.Elapsed()))

	if report.Status() == archive.StatusSuccess {
		t.console.Success(fmt.Sprintf("%s: archived @%s to %s", archive.StatusSuccess, username, root))
	} else {
		t.console.Warning(fmt.Sprintf("%s: archived @%s to %s with %d failed", archive.StatusPartialSuccess, username, root, failed))
	}
	fmt.Fprintf(t.console.out, "  %s %s\n", t.console.Dim("•"), detail)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
