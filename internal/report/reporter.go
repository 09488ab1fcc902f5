// =============================================================================
// Preston RPA - Progress/Log Reporters
// =============================================================================
//
// Reporters observe the replay event stream; they never influence control
// flow. The replay driver only ever talks to a Guard-wrapped reporter, so a
// reporter that fails or panics is counted and noted on a fallback channel
// while the run continues untouched.
//
// Two standard variants exist: LogReporter appends structured lines to the
// run log file, ConsoleReporter renders live progress for the operator.
//
// =============================================================================

package report

import (
	"github.com/rs/zerolog"

	"github.com/mkaraca/preston-rpa/internal/pos"
)

// Reporter receives status events from the replay driver, in order:
// RunStarted, then per group GroupStarted followed by one RecordOutcome per
// member, and finally RunCompleted.
type Reporter interface {
	RunStarted(runID string, groups []pos.Group)
	GroupStarted(group pos.Group)
	RecordOutcome(outcome pos.Outcome)
	RunCompleted(summary pos.Summary)
}

// =============================================================================
// FAN-OUT
// =============================================================================

// Multi combines reporters; events are delivered to each in argument order.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

type multi []Reporter

func (m multi) RunStarted(runID string, groups []pos.Group) {
	for _, r := range m {
		r.RunStarted(runID, groups)
	}
}

func (m multi) GroupStarted(group pos.Group) {
	for _, r := range m {
		r.GroupStarted(group)
	}
}

func (m multi) RecordOutcome(outcome pos.Outcome) {
	for _, r := range m {
		r.RecordOutcome(outcome)
	}
}

func (m multi) RunCompleted(summary pos.Summary) {
	for _, r := range m {
		r.RunCompleted(summary)
	}
}

// =============================================================================
// FAILURE ISOLATION
// =============================================================================

// Guard wraps a reporter so that a panic inside any event handler is caught
// and logged to the fallback channel instead of aborting replay. Reporting
// is observation-only; the pipeline must survive a broken observer.
type Guard struct {
	inner    Reporter
	fallback zerolog.Logger
	failures int
}

// NewGuard wraps inner with the fallback logger.
func NewGuard(inner Reporter, fallback zerolog.Logger) *Guard {
	return &Guard{inner: inner, fallback: fallback}
}

// Failures returns how many reporter events were dropped.
func (g *Guard) Failures() int { return g.failures }

func (g *Guard) deliver(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			g.failures++
			g.fallback.Warn().
				Str("event", event).
				Interface("panic", r).
				Msg("reporter failed; event dropped")
		}
	}()
	fn()
}

func (g *Guard) RunStarted(runID string, groups []pos.Group) {
	g.deliver("run_started", func() { g.inner.RunStarted(runID, groups) })
}

func (g *Guard) GroupStarted(group pos.Group) {
	g.deliver("group_started", func() { g.inner.GroupStarted(group) })
}

func (g *Guard) RecordOutcome(outcome pos.Outcome) {
	g.deliver("record_outcome", func() { g.inner.RecordOutcome(outcome) })
}

func (g *Guard) RunCompleted(summary pos.Summary) {
	g.deliver("run_completed", func() { g.inner.RunCompleted(summary) })
}

// Nop returns a reporter that discards all events.
func Nop() Reporter { return nop{} }

type nop struct{}

func (nop) RunStarted(string, []pos.Group) {}
func (nop) GroupStarted(pos.Group)         {}
func (nop) RecordOutcome(pos.Outcome)      {}
func (nop) RunCompleted(pos.Summary)       {}
