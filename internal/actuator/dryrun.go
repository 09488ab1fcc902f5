package actuator

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mkaraca/preston-rpa/internal/pos"
)

// DryRun is the stub variant: it logs each entry instead of driving a UI.
// Used by demos, `--dry-run`, and as the safe default actuator.
type DryRun struct {
	log zerolog.Logger
}

// NewDryRun builds the stub actuator.
func NewDryRun(log zerolog.Logger) *DryRun {
	return &DryRun{log: log}
}

func (d *DryRun) Name() string { return "dryrun" }

func (d *DryRun) Prepare(ctx context.Context) error {
	d.log.Info().Msg("dry run: no target system will be touched")
	return nil
}

func (d *DryRun) Enter(ctx context.Context, record pos.Record) error {
	if err := ctx.Err(); err != nil {
		return Errorf("enter", err, "cancelled")
	}
	d.log.Info().
		Str("record", record.Ref()).
		Str("amount", record.Amount.String()).
		Str("company", record.Company).
		Msg("dry run: would enter POS record")
	return nil
}

func (d *DryRun) Close() error { return nil }
