package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mkaraca/preston-rpa/internal/actuator"
	"github.com/mkaraca/preston-rpa/internal/pos"
	"github.com/mkaraca/preston-rpa/internal/report"
)

// scriptedActuator fails (or panics) on the listed sequence positions.
type scriptedActuator struct {
	entered []string
	failOn  map[int]error
	panicOn map[int]bool
}

func (s *scriptedActuator) Name() string                      { return "scripted" }
func (s *scriptedActuator) Prepare(ctx context.Context) error { return nil }
func (s *scriptedActuator) Close() error                      { return nil }

func (s *scriptedActuator) Enter(ctx context.Context, record pos.Record) error {
	n := len(s.entered) + 1
	s.entered = append(s.entered, record.Description)
	if s.panicOn[n] {
		panic("element not found")
	}
	if err, ok := s.failOn[n]; ok {
		return err
	}
	return nil
}

// eventRecorder captures the reporter event stream.
type eventRecorder struct {
	events   []string
	outcomes []pos.Outcome
}

func (e *eventRecorder) RunStarted(runID string, groups []pos.Group) {
	e.events = append(e.events, "run_started")
}

func (e *eventRecorder) GroupStarted(group pos.Group) {
	e.events = append(e.events, "group:"+group.Key.String())
}

func (e *eventRecorder) RecordOutcome(outcome pos.Outcome) {
	e.events = append(e.events, "outcome:"+outcome.Record.Description)
	e.outcomes = append(e.outcomes, outcome)
}

func (e *eventRecorder) RunCompleted(summary pos.Summary) {
	e.events = append(e.events, "run_completed")
}

func day(s string) time.Time {
	d, _ := time.Parse(pos.DateLayout, s)
	return d
}

func groupsFor(descs ...string) []pos.Group {
	var records []pos.Record
	for i, desc := range descs {
		records = append(records, pos.Record{
			Date:        day("2024-03-01"),
			Description: desc,
			Amount:      decimal.NewFromInt(int64(i + 1)),
			Row:         i + 2,
		})
	}
	return pos.GroupByDate(records)
}

func TestReplayPartialFailure(t *testing.T) {
	act := &scriptedActuator{failOn: map[int]error{
		2: actuator.Errorf("save", nil, "modal did not close"),
	}}
	rec := &eventRecorder{}
	driver := NewDriver(zerolog.Nop())

	summary := driver.Replay(context.Background(), groupsFor("POSH00001", "POSH00002", "POSH00003"), act, rec)

	if summary.SucceededCount != 2 || summary.FailedCount != 1 {
		t.Fatalf("summary = {%d, %d}, want {2, 1}", summary.SucceededCount, summary.FailedCount)
	}
	// The third record must still be attempted after the second fails.
	if len(act.entered) != 3 {
		t.Fatalf("actuator saw %d records, want 3", len(act.entered))
	}

	want := []pos.Status{pos.Succeeded, pos.Failed, pos.Succeeded}
	for i, o := range summary.Outcomes {
		if o.Status != want[i] {
			t.Errorf("outcome[%d] = %s, want %s", i, o.Status, want[i])
		}
	}
	if summary.Outcomes[1].Detail == "" {
		t.Error("failed outcome must carry a detail")
	}
	if summary.Outcomes[1].Seq != 2 {
		t.Errorf("failed outcome seq = %d, want 2", summary.Outcomes[1].Seq)
	}
	if driver.State() != Completed {
		t.Errorf("driver state = %v, want Completed", driver.State())
	}
}

func TestReplayActuatorPanicIsIsolated(t *testing.T) {
	act := &scriptedActuator{panicOn: map[int]bool{1: true}}
	driver := NewDriver(zerolog.Nop())

	summary := driver.Replay(context.Background(), groupsFor("POSH00001", "POSH00002"), act, report.Nop())

	if summary.FailedCount != 1 || summary.SucceededCount != 1 {
		t.Fatalf("summary = {%d, %d}, want {1, 1}", summary.SucceededCount, summary.FailedCount)
	}
	if summary.Outcomes[0].Status != pos.Failed {
		t.Error("panicking attempt must produce a Failed outcome")
	}
}

func TestReplayCanonicalOrderAcrossGroups(t *testing.T) {
	records := []pos.Record{
		{Date: day("2024-03-02"), Description: "POSH20001", Amount: decimal.NewFromInt(1), Row: 2},
		{Date: day("2024-03-01"), Description: "POSH10001", Amount: decimal.NewFromInt(1), Row: 3},
		{Date: day("2024-03-01"), Description: "POSH10002", Amount: decimal.NewFromInt(1), Row: 4},
	}
	act := &scriptedActuator{}
	rec := &eventRecorder{}
	driver := NewDriver(zerolog.Nop())

	driver.Replay(context.Background(), pos.GroupByDate(records), act, rec)

	wantOrder := []string{"POSH10001", "POSH10002", "POSH20001"}
	for i, desc := range wantOrder {
		if act.entered[i] != desc {
			t.Fatalf("entered[%d] = %s, want %s (canonical order)", i, act.entered[i], desc)
		}
	}

	wantEvents := []string{
		"run_started",
		"group:2024-03-01", "outcome:POSH10001", "outcome:POSH10002",
		"group:2024-03-02", "outcome:POSH20001",
		"run_completed",
	}
	if len(rec.events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", rec.events, wantEvents)
	}
	for i := range wantEvents {
		if rec.events[i] != wantEvents[i] {
			t.Errorf("events[%d] = %s, want %s", i, rec.events[i], wantEvents[i])
		}
	}
}

func TestReplayEmptyGroups(t *testing.T) {
	act := &scriptedActuator{}
	driver := NewDriver(zerolog.Nop())

	summary := driver.Replay(context.Background(), nil, act, report.Nop())

	if summary.SucceededCount != 0 || summary.FailedCount != 0 {
		t.Errorf("summary = {%d, %d}, want {0, 0}", summary.SucceededCount, summary.FailedCount)
	}
	if len(act.entered) != 0 {
		t.Error("no actuator call may happen for an empty group sequence")
	}
	if summary.Cancelled {
		t.Error("empty run is complete, not cancelled")
	}
}

func TestReplayCancellationAtRecordBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	act := &scriptedActuator{}
	// Cancel after the first record has been fully processed.
	canceller := &cancelAfterFirst{cancel: cancel}
	driver := NewDriver(zerolog.Nop())

	summary := driver.Replay(ctx, groupsFor("POSH00001", "POSH00002", "POSH00003"), act, canceller)

	if !summary.Cancelled {
		t.Fatal("summary must be marked cancelled")
	}
	if len(act.entered) != 1 {
		t.Fatalf("actuator saw %d records after cancellation, want 1", len(act.entered))
	}
	if summary.Attempted() != 1 {
		t.Errorf("attempted = %d, want 1", summary.Attempted())
	}
	if driver.State() != Completed {
		t.Error("a cancelled run still reaches Completed")
	}
}

type cancelAfterFirst struct {
	cancel context.CancelFunc
}

func (c *cancelAfterFirst) RunStarted(string, []pos.Group) {}
func (c *cancelAfterFirst) GroupStarted(pos.Group)         {}
func (c *cancelAfterFirst) RunCompleted(pos.Summary)       {}
func (c *cancelAfterFirst) RecordOutcome(pos.Outcome)      { c.cancel() }

func TestReplayGuardedReporterDoesNotAbort(t *testing.T) {
	act := &scriptedActuator{}
	var fallback zerolog.Logger = zerolog.Nop()
	guard := report.NewGuard(&panickyReporter{}, fallback)
	driver := NewDriver(zerolog.Nop())

	summary := driver.Replay(context.Background(), groupsFor("POSH00001", "POSH00002"), act, guard)

	if summary.SucceededCount != 2 {
		t.Fatalf("succeeded = %d, want 2 despite reporter failures", summary.SucceededCount)
	}
	if guard.Failures() == 0 {
		t.Error("guard should have counted dropped reporter events")
	}
}

type panickyReporter struct{}

func (panickyReporter) RunStarted(string, []pos.Group) { panic("ui gone") }
func (panickyReporter) GroupStarted(pos.Group)         { panic("ui gone") }
func (panickyReporter) RecordOutcome(pos.Outcome)      { panic("ui gone") }
func (panickyReporter) RunCompleted(pos.Summary)       { panic("ui gone") }

func TestReplayNoRetry(t *testing.T) {
	transient := errors.New("element not yet rendered")
	act := &scriptedActuator{failOn: map[int]error{1: transient}}
	driver := NewDriver(zerolog.Nop())

	summary := driver.Replay(context.Background(), groupsFor("POSH00001"), act, report.Nop())

	if len(act.entered) != 1 {
		t.Fatalf("actuator called %d times, want exactly 1 (no retries)", len(act.entered))
	}
	if summary.FailedCount != 1 {
		t.Errorf("failed = %d, want 1", summary.FailedCount)
	}
}
