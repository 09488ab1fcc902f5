package report

import (
	"fmt"
	"io"
	"time"

	"github.com/mkaraca/preston-rpa/internal/pos"
)

// ConsoleReporter renders live progress on the terminal: one header per
// group, one ✓/✗ line per record with a running counter, and a closing
// summary block.
type ConsoleReporter struct {
	w     io.Writer
	total int
	done  int
}

// NewConsoleReporter writes progress to w (normally os.Stdout).
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

func (r *ConsoleReporter) RunStarted(runID string, groups []pos.Group) {
	r.total = pos.RecordCount(groups)
	r.done = 0
	fmt.Fprintf(r.w, "=== Preston RPA ===\n")
	fmt.Fprintf(r.w, "Run %s: %d record(s) in %d group(s)\n", runID, r.total, len(groups))
}

func (r *ConsoleReporter) GroupStarted(group pos.Group) {
	fmt.Fprintf(r.w, "\n%s: %d record(s), total %s\n",
		group.Key, len(group.Members), group.Total)
}

func (r *ConsoleReporter) RecordOutcome(outcome pos.Outcome) {
	r.done++
	switch outcome.Status {
	case pos.Succeeded:
		fmt.Fprintf(r.w, "  ✓ [%d/%d] %s  %s\n",
			r.done, r.total, outcome.Record.Description, outcome.Record.Amount)
	default:
		fmt.Fprintf(r.w, "  ✗ [%d/%d] %s  %s: %s\n",
			r.done, r.total, outcome.Record.Description, outcome.Record.Amount, outcome.Detail)
	}
}

func (r *ConsoleReporter) RunCompleted(summary pos.Summary) {
	fmt.Fprintf(r.w, "\n=== Replay Complete ===\n")
	fmt.Fprintf(r.w, "Succeeded:    %d\n", summary.SucceededCount)
	fmt.Fprintf(r.w, "Failed:       %d\n", summary.FailedCount)
	if summary.Cancelled {
		fmt.Fprintf(r.w, "Cancelled:    %d record(s) not attempted\n", r.total-summary.Attempted())
	}
	fmt.Fprintf(r.w, "Time elapsed: %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

	if failed := summary.FailedOutcomes(); len(failed) > 0 {
		fmt.Fprintf(r.w, "\nFailed records:\n")
		for _, o := range failed {
			fmt.Fprintf(r.w, "  - %s: %s\n", o.Record.Ref(), o.Detail)
		}
	}
}
