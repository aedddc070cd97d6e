// Package commands implements the Fenny CLI using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fenny",
		Short: "Fenny - conversational financial assistant",
		Long: `Fenny answers financial questions over chat: live stock quotes,
currency conversion and general finance talk backed by a local LLM.

Examples:
  fenny serve
  fenny chat "What is the AAPL stock price?"
  fenny health`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newHealthCmd(),
		newSecretCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
