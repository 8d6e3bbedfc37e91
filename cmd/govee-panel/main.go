// Govee-panel is a terminal control panel for Govee lights and smart plugs.
//
// It lists the devices registered with a Govee relay, shows their power and
// color state, and sends power and color commands through the relay. All
// traffic goes through the relay API; no LAN access to the devices is needed.
//
// Usage:
//
//	govee-panel [command] [flags]
//
// Running without arguments opens the interactive panel.
// See 'govee-panel --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/govee-panel/internal/logging"
	"github.com/muurk/govee-panel/internal/version"
)

// errReported is returned by commands that already printed their failure
var errReported = errors.New("command failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "govee-panel",
	Short: "Govee device control panel",
	Long: `A control panel for Govee lights and smart plugs.

Devices are listed from the Govee relay, their state is polled, and power
and color edits are sent back through the relay. The relay API key is kept
in local storage; set it with 'govee-panel key set' or from the panel.

If no command is specified, the interactive panel opens.`,
	Version:           version.Full(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runPanel,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Skip config and credential setup
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Detailed())
	},
}
