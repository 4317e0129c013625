// Package cmd defines the CLI commands for the painelbot executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdpainel/painel-automation/internal/config"
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "painelbot",
		Short: "Automation tooling for the music registration panel",
		Long: `painelbot automates track registrations on the panel from rows stored
in a Supabase table. It ships three commands: 'dispatch' computes the worker
matrix for the workflow, 'upload' seeds the table from a spreadsheet, and
'run' executes one worker over its assigned slice.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newDispatchCmd())
	cmd.AddCommand(newUploadCmd())

	return cmd
}

// loadConfig loads a local .env (if any) and the environment into a Config.
func loadConfig() (config.Config, error) {
	// Missing .env is normal outside local runs.
	_ = godotenv.Load()

	cfg, err := config.Load(viper.New())
	if err != nil {
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// Execute is the entry point called by main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
