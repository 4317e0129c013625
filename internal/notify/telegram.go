// Package notify delivers run summaries through the Telegram bot API.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Telegram sends messages to one chat via a bot token.
type Telegram struct {
	token   string
	chatID  string
	baseURL string
	http    *http.Client
}

// Option adjusts a Telegram client.
type Option func(*Telegram)

// WithBaseURL overrides the API host, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(t *Telegram) {
		t.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewTelegram creates a notifier for the given bot token and chat.
func NewTelegram(token, chatID string, opts ...Option) *Telegram {
	t := &Telegram{
		token:   token,
		chatID:  chatID,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send delivers one text message. Any non-200 response is an error; the
// caller decides whether that matters.
func (t *Telegram) Send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage?chat_id=%s&text=%s",
		t.baseURL, t.token, url.QueryEscape(t.chatID), url.QueryEscape(text))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("send telegram message: status %d", resp.StatusCode)
	}
	return nil
}
