// Package logging provides zap logger helpers.
//
// Loggers are built per run and passed down explicitly so several worker
// instances can coexist in one process without clobbering each other's log
// destinations.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName returns the log file name for a worker, e.g. "painel_novo_2.log".
func FileName(workerID string) string {
	return fmt.Sprintf("painel_novo_%s.log", workerID)
}

// NewWorker builds a logger for a form-automator run. It writes plain
// timestamped lines to the worker's log file, truncating any previous run,
// and tags every entry with the worker id.
func NewWorker(workerID string) (*zap.Logger, error) {
	path := FileName(workerID)
	// Truncate up front: OutputPaths opens in append mode.
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return nil, fmt.Errorf("truncate log file %s: %w", path, err)
	}

	cfg := consoleConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build worker logger: %w", err)
	}
	return logger.With(zap.String("worker", workerID)), nil
}

// New builds a stderr logger for the one-shot commands (dispatch, upload).
func New() (*zap.Logger, error) {
	logger, err := consoleConfig().Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func consoleConfig() zap.Config {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("02/01/2006 15:04:05")
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
