// =============================================================================
// Preston RPA - Replay Outcomes
// =============================================================================

package pos

import "time"

// Status is the terminal per-record result of a replay attempt.
type Status int

const (
	// Succeeded means the actuator completed the entry for the record.
	Succeeded Status = iota

	// Failed means the actuator raised a definitive failure; the record was
	// recorded and the run continued with the next one.
	Failed
)

// String returns the log representation of the status.
func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is emitted once per attempted record by the replay driver and
// consumed immediately by the reporters. It is not persisted beyond the run
// log.
type Outcome struct {
	// Record is the record that was attempted.
	Record Record

	// Group is the key of the group the record belongs to.
	Group GroupKey

	// Seq is the 1-based position of the record in the canonical replay
	// sequence.
	Seq int

	// Status is Succeeded or Failed.
	Status Status

	// Detail is the human-readable failure cause. Empty on success.
	Detail string
}

// Summary is the sole terminal output of a replay run.
type Summary struct {
	// RunID identifies the run in logs and archived artifacts.
	RunID string

	SucceededCount int
	FailedCount    int

	// Outcomes lists every attempted record in canonical order. Records
	// skipped because the run was cancelled do not appear.
	Outcomes []Outcome

	// Cancelled is true when the run was stopped at a record boundary
	// before every record was attempted.
	Cancelled bool

	StartedAt  time.Time
	FinishedAt time.Time
}

// Attempted returns the number of records that reached a terminal state.
func (s Summary) Attempted() int {
	return s.SucceededCount + s.FailedCount
}

// FailedOutcomes returns only the failed outcomes, for manual follow-up.
func (s Summary) FailedOutcomes() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Status == Failed {
			failed = append(failed, o)
		}
	}
	return failed
}
