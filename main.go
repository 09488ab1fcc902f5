// =============================================================================
// Preston RPA - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Preston RPA CLI application. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   preston run          - Extract, group, and replay POS transactions
//   preston inspect      - Show the replay plan without replaying
//   preston version      - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//   - sim/           : Contains the local Preston HTML simulator
//
// =============================================================================

package main

import (
	"github.com/mkaraca/preston-rpa/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
