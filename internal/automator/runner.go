// Package automator implements the per-worker run loop: fetch the assigned
// slice of pending rows, log into the panel once, register each row and
// write its status back, then report a summary.
package automator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mdpainel/painel-automation/internal/panel"
	"github.com/mdpainel/painel-automation/internal/supabase"
)

// Store is the slice of the backend client the runner needs.
type Store interface {
	FetchPending(ctx context.Context, page *supabase.Page) ([]supabase.Row, error)
	UpdateStatus(ctx context.Context, isrc, status string) error
}

// Panel is a logged-in browser session against the registration panel.
type Panel interface {
	Login(ctx context.Context) error
	RegisterTrack(ctx context.Context, track panel.Track) error
	Close()
}

// Notifier delivers the end-of-run summary.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Config controls one runner instance.
type Config struct {
	WorkerID string
	// Page is this worker's slice; nil processes the full pending set.
	Page *supabase.Page
	// DisableNotification suppresses the summary message.
	DisableNotification bool
}

// Runner executes one worker run. Rows are processed strictly one at a time;
// parallelism lives across processes, never inside one.
type Runner struct {
	store    Store
	newPanel func() (Panel, error)
	notifier Notifier
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Runner. The panel factory defers browser startup until
// rows are known to exist.
func New(store Store, newPanel func() (Panel, error), notifier Notifier, cfg Config, logger *zap.Logger) *Runner {
	return &Runner{
		store:    store,
		newPanel: newPanel,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes the full worker pipeline. It returns an error only for
// failures to even start (browser launch); backend and per-row failures are
// logged and absorbed so the run always finishes cleanly.
func (r *Runner) Run(ctx context.Context) error {
	logger := r.logger.With(zap.String("run_id", uuid.NewString()))

	rows := r.fetchRows(ctx, logger)
	if len(rows) == 0 {
		logger.Info("no pending rows for this worker, nothing to do")
		return nil
	}

	session, err := r.newPanel()
	if err != nil {
		return fmt.Errorf("start panel session: %w", err)
	}
	defer session.Close()

	if err := session.Login(ctx); err != nil {
		logger.Error("aborting run, could not log into the panel", zap.Error(err))
		return nil
	}

	logger.Info("starting registration", zap.Int("rows", len(rows)))

	registered := 0
	for _, row := range rows {
		if r.processRow(ctx, session, row, logger) {
			registered++
		}
	}

	logger.Info("registration finished", zap.Int("registered", registered))

	if r.cfg.DisableNotification {
		return nil
	}
	if err := r.notifier.Send(ctx, summaryMessage(registered)); err != nil {
		logger.Error("failed to send summary notification", zap.Error(err))
	} else {
		logger.Info("summary notification sent")
	}
	return nil
}

func (r *Runner) fetchRows(ctx context.Context, logger *zap.Logger) []supabase.Row {
	if r.cfg.Page != nil {
		logger.Info("fetching assigned slice",
			zap.Int("offset", r.cfg.Page.Offset),
			zap.Int("limit", r.cfg.Page.Limit))
	} else {
		logger.Info("fetching the full pending set")
	}

	rows, err := r.store.FetchPending(ctx, r.cfg.Page)
	if err != nil {
		logger.Error("failed to fetch pending rows", zap.Error(err))
		return nil
	}
	return rows
}

// processRow registers one row and writes its status back. Reports whether
// the row was registered and its success status recorded. One row failing
// never stops the batch.
func (r *Runner) processRow(ctx context.Context, session Panel, row supabase.Row, logger *zap.Logger) bool {
	if row.ISRC == "" || row.Artist == "" || row.Holders == "" {
		// Incomplete rows stay pending: no status write, a later run
		// picks them up again once the data is fixed.
		logger.Warn("skipping row with incomplete data",
			zap.Int64("id", row.ID),
			zap.String("isrc", row.ISRC),
			zap.String("artist", row.Artist),
			zap.String("holders", row.Holders))
		return false
	}

	track := panel.Track{ISRC: row.ISRC, Artist: row.Artist, Holders: row.Holders}
	if err := session.RegisterTrack(ctx, track); err != nil {
		logger.Error("registration failed", zap.String("isrc", row.ISRC), zap.Error(err))
		if uerr := r.store.UpdateStatus(ctx, row.ISRC, supabase.StatusError); uerr != nil {
			logger.Error("failed to record error status", zap.String("isrc", row.ISRC), zap.Error(uerr))
		}
		return false
	}

	if err := r.store.UpdateStatus(ctx, row.ISRC, supabase.StatusOK); err != nil {
		logger.Warn("registered on the panel but failed to record status",
			zap.String("isrc", row.ISRC), zap.Error(err))
		return false
	}

	logger.Info("row registered",
		zap.String("isrc", row.ISRC),
		zap.String("artist", row.Artist),
		zap.String("holders", row.Holders))
	return true
}

func summaryMessage(registered int) string {
	return fmt.Sprintf("Painel New Concluído com êxito 👍🏼📝✅\n%d arquivo(s) cadastrado(s).\nPor gentileza validar relatório de logs, Obrigado!", registered)
}
