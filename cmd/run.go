// =============================================================================
// Preston RPA - Run Command
// =============================================================================
//
// The 'run' command executes the full pipeline:
//   1. Load configuration
//   2. Extract validated POS records from the workbook
//   3. Group records by posting date (optionally by date + company)
//   4. Replay each record sequentially through the configured actuator
//   5. Print the summary and archive the workbook on a fully clean run
//
// Individual record failures never fail the process: the command exits
// non-zero only when configuration or extraction fails outright. Ctrl-C
// stops the run at the next record boundary.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mkaraca/preston-rpa/internal/actuator"
	"github.com/mkaraca/preston-rpa/internal/actuator/browser"
	"github.com/mkaraca/preston-rpa/internal/actuator/screen"
	"github.com/mkaraca/preston-rpa/internal/config"
	"github.com/mkaraca/preston-rpa/internal/extract"
	"github.com/mkaraca/preston-rpa/internal/logger"
	"github.com/mkaraca/preston-rpa/internal/pos"
	"github.com/mkaraca/preston-rpa/internal/replay"
	"github.com/mkaraca/preston-rpa/internal/report"
	"github.com/mkaraca/preston-rpa/pkg/utils"
)

// excelPath overrides the configured workbook path.
var excelPath string

// actuatorKind overrides the configured actuator variant.
var actuatorKind string

// dryRun forces the dryrun actuator regardless of configuration.
var dryRun bool

// byCompany enables composite (date, company) grouping.
var byCompany bool

// runCmd represents the 'run' command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract, group, and replay POS transactions",
	Long: `The run command reads the POS workbook, validates and groups the records,
and replays them into the target system through the configured actuator.

Rows that are not POS transactions (description filter) are skipped by
design. Rows with malformed dates or amounts are dropped with a warning.
A record the actuator cannot enter is recorded as failed and the run
continues; the final summary lists the failed subset for manual follow-up.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReplay()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&excelPath, "excel", "", "Path to the POS workbook (overrides config)")
	runCmd.Flags().StringVar(&actuatorKind, "actuator", "", "Actuator variant: browser, screen, or dryrun (overrides config)")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log the would-be entries without touching any UI")
	runCmd.Flags().BoolVar(&byCompany, "by-company", false, "Group by (date, company) instead of date only")
}

// runReplay orchestrates one full replay run.
func runReplay() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	log := logger.New(cfg.LogLevel)

	// The run log is the append-only record of everything that happens.
	runLog, logFile, err := logger.OpenRunLog(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	// =========================================================================
	// STEP 1: EXTRACT
	// =========================================================================
	records, stats, err := extract.Extract(cfg.ExcelPath, extract.Options{
		Filter: pos.NewFilter(cfg.Filter.DescriptionPrefix, cfg.Filter.MinSuffixDigits),
	})
	if err != nil {
		return err
	}
	log.Info().
		Int("rows", stats.TotalRows).
		Int("records", stats.Extracted).
		Int("filtered", stats.Filtered).
		Int("warnings", stats.Warnings()).
		Msg("workbook extracted")
	if stats.Warnings() > 0 {
		log.Warn().
			Int("bad_dates", stats.BadDates).
			Int("bad_amounts", stats.BadAmounts).
			Msg("rows dropped for parse errors")
	}

	// =========================================================================
	// STEP 2: GROUP
	// =========================================================================
	groups := pos.GroupBy(records, pos.GroupOptions{ByCompany: cfg.Grouping.ByCompany})

	// =========================================================================
	// STEP 3: PREPARE ACTUATOR
	// =========================================================================
	act, err := buildActuator(cfg, log)
	if err != nil {
		return err
	}

	// Ctrl-C stops at the next record boundary; a second one kills the
	// process the usual way.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := act.Prepare(ctx); err != nil {
		return fmt.Errorf("actuator %s failed to prepare: %w", act.Name(), err)
	}
	defer act.Close()

	// =========================================================================
	// STEP 4: REPLAY
	// =========================================================================
	reporter := report.NewGuard(
		report.Multi(
			report.NewConsoleReporter(os.Stdout),
			report.NewLogReporter(runLog),
		),
		log,
	)

	driver := replay.NewDriver(log)
	summary := driver.Replay(ctx, groups, act, reporter)

	if n := reporter.Failures(); n > 0 {
		log.Warn().Int("dropped_events", n).Msg("some reporter events were dropped")
	}

	// =========================================================================
	// STEP 5: ARCHIVE
	// =========================================================================
	// The workbook is archived only after a fully clean, uncancelled run, so
	// a partially replayed file stays visible in place.
	if shouldArchive(cfg, summary) {
		archived, err := utils.MoveToDir(cfg.ExcelPath, cfg.ArchiveDir)
		if err != nil {
			log.Warn().Err(err).Msg("failed to archive workbook")
		} else {
			log.Info().Str("archived", archived).Msg("workbook archived")
		}
	}

	// Individual record failures do not fail the process.
	return nil
}

// shouldArchive reports whether the workbook may be moved to the archive.
// Dry runs never archive, whether selected by flag or by configuration, and
// neither does any run with a failed record or a cancellation: the workbook
// stays in place until every record has actually been entered.
func shouldArchive(cfg *config.Config, summary pos.Summary) bool {
	return cfg.ArchiveDir != "" &&
		cfg.Actuator.Kind != config.ActuatorDryRun &&
		summary.FailedCount == 0 &&
		!summary.Cancelled
}

// applyFlags merges command-line overrides into the loaded configuration.
func applyFlags(cfg *config.Config) {
	if excelPath != "" {
		cfg.ExcelPath = excelPath
	}
	if actuatorKind != "" {
		cfg.Actuator.Kind = actuatorKind
	}
	if dryRun {
		cfg.Actuator.Kind = config.ActuatorDryRun
	}
	if byCompany {
		cfg.Grouping.ByCompany = true
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
}

// buildActuator selects the actuator variant at configuration time. The
// replay driver only ever sees the interface.
func buildActuator(cfg *config.Config, log zerolog.Logger) (actuator.Actuator, error) {
	switch cfg.Actuator.Kind {
	case config.ActuatorBrowser:
		return browser.New(cfg.Actuator.Browser, log), nil
	case config.ActuatorScreen:
		return screen.New(cfg.Actuator.Screen, log), nil
	case config.ActuatorDryRun:
		return actuator.NewDryRun(log), nil
	default:
		return nil, fmt.Errorf("unknown actuator kind %q", cfg.Actuator.Kind)
	}
}
