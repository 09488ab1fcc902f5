package report

import (
	"github.com/rs/zerolog"

	"github.com/mkaraca/preston-rpa/internal/pos"
)

// LogReporter appends one structured line per event to the run log. Failure
// outcomes carry the record reference and the failure detail so the failed
// subset can be re-entered manually afterwards.
type LogReporter struct {
	log zerolog.Logger
}

// NewLogReporter builds a reporter on top of an already-opened log channel.
func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) RunStarted(runID string, groups []pos.Group) {
	r.log.Info().
		Str("event", "run_started").
		Str("run_id", runID).
		Int("groups", len(groups)).
		Int("records", pos.RecordCount(groups)).
		Msg("replay run started")
}

func (r *LogReporter) GroupStarted(group pos.Group) {
	r.log.Info().
		Str("event", "group_started").
		Str("group", group.Key.String()).
		Int("members", len(group.Members)).
		Str("total", group.Total.String()).
		Msg("processing group")
}

func (r *LogReporter) RecordOutcome(outcome pos.Outcome) {
	ev := r.log.Info()
	if outcome.Status == pos.Failed {
		ev = r.log.Error()
	}
	ev = ev.
		Str("event", "record_outcome").
		Str("record", outcome.Record.Ref()).
		Str("group", outcome.Group.String()).
		Int("seq", outcome.Seq).
		Str("status", outcome.Status.String()).
		Str("amount", outcome.Record.Amount.String())
	if outcome.Detail != "" {
		ev = ev.Str("detail", outcome.Detail)
	}
	ev.Msg("record replayed")
}

func (r *LogReporter) RunCompleted(summary pos.Summary) {
	r.log.Info().
		Str("event", "run_completed").
		Str("run_id", summary.RunID).
		Int("succeeded", summary.SucceededCount).
		Int("failed", summary.FailedCount).
		Bool("cancelled", summary.Cancelled).
		Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("replay run completed")
}
