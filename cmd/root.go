// =============================================================================
// Preston RPA - Root Command
// =============================================================================
//
// Defines the root command for the Cobra CLI. All other commands ('run',
// 'inspect', 'version') are attached to it.
//
// COBRA CLI STRUCTURE:
//   preston
//   ├── run       (extract, group, and replay into the target system)
//   ├── inspect   (extract and group only; print the replay plan)
//   └── version
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the configuration file, overridable with
// --config.
var cfgFile string

// verbose enables debug logging when set.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "preston",
	Short: "Preston RPA - replay POS spreadsheet transactions into the Preston UI",
	Long: `Preston RPA reads POS transactions from an Excel workbook, groups them by
posting date, and replays them into the Preston accounting application.

The entry actuator is configurable:
  browser   drive the local Preston HTML simulator (chromedp)
  screen    drive the real desktop UI (OCR + icon matching + input synthesis)
  dryrun    log the would-be entries without touching any UI

A record that fails to enter is logged and skipped; the run continues with
the next record and finishes with a summary of the failed subset.

Example Usage:
  preston run                          # Replay the configured workbook
  preston run --excel ./march.xlsx     # Replay a specific workbook
  preston run --actuator browser       # Replay against the simulator
  preston inspect                      # Show the replay plan without replaying`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}
