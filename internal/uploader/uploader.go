// Package uploader seeds the backend table from a spreadsheet: one insert
// per row, with rejected rows logged and counted but never aborting the
// import.
package uploader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Backend is the slice of the Supabase client the uploader needs.
type Backend interface {
	Ping(ctx context.Context) error
	DeleteAll(ctx context.Context) error
	Insert(ctx context.Context, record map[string]string) error
}

// Uploader runs the one-shot spreadsheet import.
type Uploader struct {
	backend Backend
	logger  *zap.Logger

	// Prompt I/O, injectable for tests. Defaults to stdin/stdout are set
	// by the CLI.
	In  io.Reader
	Out io.Writer
}

// New constructs an Uploader.
func New(backend Backend, logger *zap.Logger, in io.Reader, out io.Writer) *Uploader {
	return &Uploader{backend: backend, logger: logger, In: in, Out: out}
}

// Run imports the spreadsheet at path into the backend table. The backend
// must be reachable up front; everything after that precondition is
// per-row: a rejected insert is logged with the row's ISRC and the
// backend's detail, and the import continues.
func (u *Uploader) Run(ctx context.Context, path, table, baseURL string) error {
	u.logger.Info("starting import", zap.String("spreadsheet", path), zap.String("table", table))

	if err := u.backend.Ping(ctx); err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	u.logger.Info("backend connection verified")

	fmt.Fprintf(u.Out, "\nPlanilha: %s\nTabela de destino: %s\nURL do Supabase: %s\n", path, table, baseURL)
	if u.confirm("\nDeseja limpar a tabela antes de importar? (s/n): ") {
		fmt.Fprintln(u.Out, "Limpando tabela...")
		if err := u.backend.DeleteAll(ctx); err != nil {
			u.logger.Error("failed to clear table", zap.Error(err))
		} else {
			u.logger.Info("table cleared")
		}
	}

	records, err := ReadSheet(path)
	if err != nil {
		return err
	}
	u.logger.Info("spreadsheet parsed", zap.Int("rows", len(records)))

	accepted, rejected := 0, 0
	for i, record := range records {
		if err := u.backend.Insert(ctx, record); err != nil {
			rejected++
			u.logger.Warn("row rejected",
				zap.Int("row", i+1),
				zap.String("isrc", recordISRC(record)),
				zap.Error(err))
			continue
		}
		accepted++
	}

	u.logger.Info("import finished",
		zap.Int("accepted", accepted),
		zap.Int("rejected", rejected))
	fmt.Fprintf(u.Out, "Importação finalizada: %d sucessos, %d erros\n", accepted, rejected)
	return nil
}

// confirm prompts and reads one line; s/sim/y/yes (any case) means yes.
func (u *Uploader) confirm(prompt string) bool {
	fmt.Fprint(u.Out, prompt)
	scanner := bufio.NewScanner(u.In)
	if !scanner.Scan() {
		return false
	}
	return IsAffirmative(scanner.Text())
}

// IsAffirmative reports whether an interactive answer means yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	}
	return false
}

func recordISRC(record map[string]string) string {
	if isrc, ok := record["ISRC"]; ok {
		return isrc
	}
	return "N/A"
}
