package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lhyphendixon/sidekick-forge/internal/cli"
	"github.com/lhyphendixon/sidekick-forge/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "forged",
		Short: "Sidekick Forge daemon and admin CLI",
		Long:  "Sidekick Forge daemon for running the API server and managing clients and API keys",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ClientCmd())
	rootCmd.AddCommand(admin.APIKeyCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
