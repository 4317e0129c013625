package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mdpainel/painel-automation/internal/logging"
	"github.com/mdpainel/painel-automation/internal/supabase"
	"github.com/mdpainel/painel-automation/internal/uploader"
)

// newUploadCmd creates the 'upload' subcommand: seed the backend table from
// the spreadsheet. Interactive by design; run it ahead of dispatching
// workers.
func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Import the spreadsheet into the Supabase table",
		Long: `Reads the spreadsheet (PLANILHA, default Emitir.xlsx), normalizes
column names, optionally clears the destination table after confirmation,
and inserts each row as a new record, reporting accepted and rejected
counts.`,
		RunE: runUploadCommand,
	}
}

func runUploadCommand(cmd *cobra.Command, _ []string) error {
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

	backend := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAPIKey, cfg.Table, logger)
	u := uploader.New(backend, logger, os.Stdin, os.Stdout)

	return u.Run(cmd.Context(), cfg.Spreadsheet, cfg.Table, cfg.SupabaseURL)
}
