// Package cli implements the countdown command-line interface using Cobra.
// Commands either run the daemon, run a countdown in the foreground, or talk
// to a running daemon over its HTTP API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "countdown",
	Short: "countdown: a pausable countdown timer",
	Long: `countdown runs a single countdown timer with pause, resume and a
completion alert. Durations are typed as H:MM:SS, MM:SS or SS, or with
unit letters such as "2h 47m 12s".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
