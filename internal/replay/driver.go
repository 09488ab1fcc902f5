// =============================================================================
// Preston RPA - Replay Driver
// =============================================================================
//
// Drives the canonical replay sequence: groups in ascending key order,
// members in stored order, one record fully processed at a time. Each
// actuator call runs inside a failure-isolating boundary; a single record's
// failure never aborts the batch. No retries are attempted: a transient
// actuator failure is terminal for that record.
//
// State machine: per record Pending -> Attempting -> {Succeeded | Failed};
// per run Idle -> Running -> Completed, with Completed reachable only after
// every record has a terminal state (or the run was cancelled at a record
// boundary).
//
// =============================================================================

package replay

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mkaraca/preston-rpa/internal/actuator"
	"github.com/mkaraca/preston-rpa/internal/pos"
	"github.com/mkaraca/preston-rpa/internal/report"
)

// RunState tracks the driver through a run.
type RunState int

const (
	Idle RunState = iota
	Running
	Completed
)

// Driver replays grouped records through an actuator, sequentially. The
// target system is an exclusive resource; the driver is the only component
// that touches it for the duration of a run.
type Driver struct {
	log   zerolog.Logger
	state RunState
}

// NewDriver builds a driver logging to log.
func NewDriver(log zerolog.Logger) *Driver {
	return &Driver{log: log, state: Idle}
}

// State returns the current run state.
func (d *Driver) State() RunState { return d.state }

// Replay processes every group member in canonical order through act,
// forwarding events to rep. Cancellation is honored only at record
// boundaries: an in-flight actuator call is never interrupted, and the
// partial summary is still returned. The reporter must already be
// failure-isolated (see report.Guard); Replay never lets reporting steer
// control flow.
func (d *Driver) Replay(ctx context.Context, groups []pos.Group, act actuator.Actuator, rep report.Reporter) pos.Summary {
	summary := pos.Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	d.state = Running

	rep.RunStarted(summary.RunID, groups)
	d.log.Info().
		Str("run_id", summary.RunID).
		Str("actuator", act.Name()).
		Int("records", pos.RecordCount(groups)).
		Msg("replay started")

	seq := 0
loop:
	for _, group := range groups {
		rep.GroupStarted(group)
		for _, record := range group.Members {
			// Cancellation is checked between records, never mid-attempt.
			if err := ctx.Err(); err != nil {
				summary.Cancelled = true
				d.log.Warn().Str("run_id", summary.RunID).Msg("replay cancelled at record boundary")
				break loop
			}

			seq++
			outcome := pos.Outcome{
				Record: record,
				Group:  group.Key,
				Seq:    seq,
			}

			if err := d.attempt(ctx, act, record); err != nil {
				outcome.Status = pos.Failed
				outcome.Detail = err.Error()
				summary.FailedCount++
			} else {
				outcome.Status = pos.Succeeded
				summary.SucceededCount++
			}

			summary.Outcomes = append(summary.Outcomes, outcome)
			rep.RecordOutcome(outcome)
		}
	}

	summary.FinishedAt = time.Now()
	d.state = Completed
	rep.RunCompleted(summary)
	d.log.Info().
		Str("run_id", summary.RunID).
		Int("succeeded", summary.SucceededCount).
		Int("failed", summary.FailedCount).
		Msg("replay completed")
	return summary
}

// attempt invokes the actuator inside the failure boundary. Both returned
// errors and panics become per-record failures.
func (d *Driver) attempt(ctx context.Context, act actuator.Actuator, record pos.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("actuator panic: %v", r)
		}
	}()
	return act.Enter(ctx, record)
}
