// =============================================================================
// Preston RPA - Inspect Command
// =============================================================================
//
// The 'inspect' command runs extraction and grouping only and prints the
// replay plan: one line per group with member count and decimal total. No
// actuator is touched, which makes it safe to run against any workbook.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mkaraca/preston-rpa/internal/config"
	"github.com/mkaraca/preston-rpa/internal/extract"
	"github.com/mkaraca/preston-rpa/internal/pos"
)

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the replay plan without replaying",
	Long: `The inspect command extracts and groups the POS records exactly like 'run'
but stops before any actuator call. Use it to verify the filter, grouping,
and totals before replaying a new workbook.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&excelPath, "excel", "", "Path to the POS workbook (overrides config)")
	inspectCmd.Flags().BoolVar(&byCompany, "by-company", false, "Group by (date, company) instead of date only")
}

func runInspect(w io.Writer) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	records, stats, err := extract.Extract(cfg.ExcelPath, extract.Options{
		Filter: pos.NewFilter(cfg.Filter.DescriptionPrefix, cfg.Filter.MinSuffixDigits),
	})
	if err != nil {
		return err
	}

	groups := pos.GroupBy(records, pos.GroupOptions{ByCompany: cfg.Grouping.ByCompany})

	fmt.Fprintf(w, "Workbook: %s\n", cfg.ExcelPath)
	fmt.Fprintf(w, "Rows: %d  POS records: %d  Filtered: %d  Warnings: %d\n\n",
		stats.TotalRows, stats.Extracted, stats.Filtered, stats.Warnings())

	for _, g := range groups {
		fmt.Fprintf(w, "%s  %3d record(s)  total %s\n", g.Key, len(g.Members), g.Total)
		for _, m := range g.Members {
			fmt.Fprintf(w, "    row %-4d %-24s %12s\n", m.Row, m.Description, m.Amount)
		}
	}
	fmt.Fprintf(w, "\n%d group(s), %d record(s) would be replayed.\n",
		len(groups), pos.RecordCount(groups))
	return nil
}
