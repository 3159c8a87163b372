package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lhyphendixon/sidekick-forge/internal/cli"
	"github.com/lhyphendixon/sidekick-forge/internal/cli/ops"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "forge",
		Short: "Forge CLI - Operate Sidekick Forge agents",
		Long: `Forge CLI provides commands to operate agents, sessions and knowledge documents.

Environment variables:
  FORGE_API_KEY   API key for authentication (required)
  FORGE_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-key", "", "API key for authentication (overrides env and config)")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(ops.AuthCmd())
	rootCmd.AddCommand(ops.AgentCmd())
	rootCmd.AddCommand(ops.TriggerCmd())
	rootCmd.AddCommand(ops.PreviewCmd())
	rootCmd.AddCommand(ops.SessionCmd())
	rootCmd.AddCommand(ops.DocumentCmd())
	rootCmd.AddCommand(ops.SearchCmd())
	rootCmd.AddCommand(ops.TranscriptCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
