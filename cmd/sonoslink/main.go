// Sonoslink discovers Sonos zone players on the local network and controls
// them over UPnP.
//
// It finds one responding player with SSDP (or mDNS), asks it for the
// household's zone group topology, and prints one line or box per group.
// Playback commands act on the coordinator of the group containing a room.
//
// Usage:
//
//	sonoslink [command] [flags]
//
// Running without arguments scans and lists the zone groups.
// See 'sonoslink --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/sonoslink/internal/logging"
	"github.com/muurk/sonoslink/internal/ui"
	"github.com/muurk/sonoslink/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		ui.NewPrinter(os.Stderr).PrintError("Command failed", err)
		os.Exit(1)
	}
}

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "sonoslink",
	Short: "Sonos zone player discovery and control",
	Long: `Discover Sonos zone players on the local network and control them.

One responding player is enough: its zone group topology describes every
room in the household, grouped under the coordinator that plays for them.

If no command is specified, the zone groups are scanned and listed.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: scan when no subcommand provided
		return runScan(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sonoslink %s\n", version.Full())
	},
}
