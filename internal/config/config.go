// Package config loads and validates process configuration via Viper.
//
// All settings come from the environment (or a local .env file loaded by the
// CLI bootstrap), using the exact variable names the deployment workflows
// export.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config captures everything the three commands need from the environment.
type Config struct {
	// Panel credentials.
	LoginUsername string
	LoginPassword string

	// Telegram notification settings.
	TelegramToken   string
	TelegramChatID  string
	DisableTelegram bool

	// Supabase backend.
	SupabaseURL    string
	SupabaseAPIKey string
	Table          string

	// Row uploader input.
	Spreadsheet string

	// Worker identity and slice assignment.
	WorkerID  string
	JobOffset *int
	JobLimit  *int

	// Dispatcher output file (GITHUB_OUTPUT); empty means stdout.
	OutputPath string
}

// envVars lists every environment variable we bind. Viper needs explicit
// binds because the deployment uses bare names with no common prefix.
var envVars = []string{
	"LOGIN_USERNAME",
	"LOGIN_PASSWORD",
	"TELEGRAM_TOKEN",
	"TELEGRAM_CHAT_ID",
	"DISABLE_TELEGRAM_NOTIFICATION",
	"SUPABASE_URL",
	"SUPABASE_API_KEY",
	"TABELA",
	"PLANILHA",
	"WORKER_ID",
	"JOB_OFFSET",
	"JOB_LIMIT",
	"GITHUB_OUTPUT",
}

// Load reads configuration from the environment into a Config.
func Load(v *viper.Viper) (Config, error) {
	for _, name := range envVars {
		if err := v.BindEnv(name); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", name, err)
		}
	}

	v.SetDefault("TABELA", "cadastros")
	v.SetDefault("PLANILHA", "Emitir.xlsx")
	v.SetDefault("WORKER_ID", "local")

	cfg := Config{
		LoginUsername:   v.GetString("LOGIN_USERNAME"),
		LoginPassword:   v.GetString("LOGIN_PASSWORD"),
		TelegramToken:   v.GetString("TELEGRAM_TOKEN"),
		TelegramChatID:  v.GetString("TELEGRAM_CHAT_ID"),
		DisableTelegram: v.GetBool("DISABLE_TELEGRAM_NOTIFICATION"),
		SupabaseURL:     strings.TrimRight(v.GetString("SUPABASE_URL"), "/"),
		SupabaseAPIKey:  v.GetString("SUPABASE_API_KEY"),
		Table:           v.GetString("TABELA"),
		Spreadsheet:     v.GetString("PLANILHA"),
		WorkerID:        v.GetString("WORKER_ID"),
		OutputPath:      v.GetString("GITHUB_OUTPUT"),
	}

	var err error
	if cfg.JobOffset, err = optionalInt(v, "JOB_OFFSET"); err != nil {
		return Config{}, err
	}
	if cfg.JobLimit, err = optionalInt(v, "JOB_LIMIT"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// optionalInt parses an env var that may be unset. Unset means nil, not zero:
// a worker without a slice processes the whole pending set.
func optionalInt(v *viper.Viper, name string) (*int, error) {
	raw := v.GetString(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return &n, nil
}

// ValidateBackend checks the settings required by every command that talks
// to Supabase (dispatch, upload).
func (c Config) ValidateBackend() error {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseAPIKey == "" {
		missing = append(missing, "SUPABASE_API_KEY")
	}
	return missingErr(missing)
}

// ValidateWorker checks everything the form automator needs: backend access,
// panel credentials and the Telegram channel.
func (c Config) ValidateWorker() error {
	if err := c.ValidateBackend(); err != nil {
		return err
	}
	var missing []string
	if c.LoginUsername == "" {
		missing = append(missing, "LOGIN_USERNAME")
	}
	if c.LoginPassword == "" {
		missing = append(missing, "LOGIN_PASSWORD")
	}
	if c.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_TOKEN")
	}
	if c.TelegramChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	return missingErr(missing)
}

func missingErr(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
}
