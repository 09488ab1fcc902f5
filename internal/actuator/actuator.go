// =============================================================================
// Preston RPA - Actuator Capability
// =============================================================================
//
// The actuator is the external collaborator that performs the actual data
// entry against the target system. Two real variants exist (browser
// automation against the Preston simulator, screen automation against the
// desktop UI) plus a dry-run stub; the replay driver depends only on this
// interface and never on variant details. The variant is selected once, at
// configuration time.
//
// =============================================================================

package actuator

import (
	"context"
	"fmt"

	"github.com/mkaraca/preston-rpa/internal/pos"
)

// Actuator enters POS records into the target system. Enter is synchronous:
// it blocks until the entry is saved or a definitive failure occurs. A
// failed Enter must leave the target in a state safe to proceed with the
// next record.
type Actuator interface {
	// Name identifies the variant in logs.
	Name() string

	// Prepare opens the target system (navigates the simulator, focuses
	// the application window). Called once before the first record.
	Prepare(ctx context.Context) error

	// Enter reproduces one record in the target system.
	Enter(ctx context.Context, record pos.Record) error

	// Close releases the target system at run end.
	Close() error
}

// Error is the failure raised by any actuator variant. It is caught at the
// replay driver boundary and converted into a Failed outcome.
type Error struct {
	// Op is the step that failed (e.g. "navigate", "fill", "save").
	Op string

	// Detail is the human-readable cause carried into the outcome.
	Detail string

	// Err is the underlying error, when one exists.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an actuator Error for the given step.
func Errorf(op string, err error, format string, args ...interface{}) *Error {
	return &Error{Op: op, Detail: fmt.Sprintf(format, args...), Err: err}
}
