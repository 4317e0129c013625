package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mdpainel/painel-automation/internal/dispatch"
	"github.com/mdpainel/painel-automation/internal/logging"
	"github.com/mdpainel/painel-automation/internal/supabase"
)

// newDispatchCmd creates the 'dispatch' subcommand: count pending rows and
// emit the worker matrix for the orchestrating workflow.
func newDispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Compute the worker job matrix from the pending-row count",
		Long: `Counts pending rows in the Supabase table and partitions them into
offset/limit slices, up to four workers of 250 rows each. The matrix is
appended to the GITHUB_OUTPUT file when set, or printed to stdout.`,
		RunE: runDispatchCommand,
	}
}

func runDispatchCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBackend(); err != nil {
		return err
	}

	logger, err := logging.New()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	counter := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAPIKey, cfg.Table, logger)
	out := &dispatch.Output{Path: cfg.OutputPath}

	return dispatch.Run(cmd.Context(), counter, out, logger)
}
