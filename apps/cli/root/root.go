package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the PropTrack admin CLI. Subcommands (auth, bootstrap, users) are attached here.
var rootCmd = &cobra.Command{
	Use:           "proptrack",
	Short:         "PropTrack admin CLI",
	Long:          "Administrative utilities for PropTrack (dev tokens, database bootstrap, user invitations).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
