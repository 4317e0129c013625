package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mdpainel/painel-automation/internal/automator"
	"github.com/mdpainel/painel-automation/internal/config"
	"github.com/mdpainel/painel-automation/internal/logging"
	"github.com/mdpainel/painel-automation/internal/notify"
	"github.com/mdpainel/painel-automation/internal/panel"
	"github.com/mdpainel/painel-automation/internal/supabase"
)

// newRunCmd creates the 'run' subcommand: one form-automator worker
// processing its assigned slice of pending rows.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Register pending rows on the panel",
		Long: `Fetches this worker's slice of pending rows from the Supabase table,
logs into the panel and registers each row, writing the outcome back per row.
The slice is taken from JOB_OFFSET/JOB_LIMIT; without them the worker
processes the full pending set.`,
		RunE: runWorkerCommand,
	}
}

func runWorkerCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	logger, err := logging.NewWorker(cfg.WorkerID)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runner := buildRunner(cfg, logger)

	logger.Info("worker starting")
	if err := runner.Run(cmd.Context()); err != nil {
		logger.Error("worker run failed", zap.Error(err))
		return fmt.Errorf("worker run: %w", err)
	}
	logger.Info("worker finished")
	return nil
}

func buildRunner(cfg config.Config, logger *zap.Logger) *automator.Runner {
	store := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAPIKey, cfg.Table, logger)
	notifier := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)

	newPanel := func() (automator.Panel, error) {
		return panel.NewSession(panel.Config{
			Username: cfg.LoginUsername,
			Password: cfg.LoginPassword,
		}, logger)
	}

	var page *supabase.Page
	if cfg.JobOffset != nil && cfg.JobLimit != nil {
		page = &supabase.Page{Offset: *cfg.JobOffset, Limit: *cfg.JobLimit}
	}

	return automator.New(store, newPanel, notifier, automator.Config{
		WorkerID:            cfg.WorkerID,
		Page:                page,
		DisableNotification: cfg.DisableTelegram,
	}, logger)
}
