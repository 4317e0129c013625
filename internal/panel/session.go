// Package panel drives the third-party registration panel through headless
// Chrome via chromedp.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// ErrLoginFailed indicates the panel kept us on the login page after
// submitting credentials.
var ErrLoginFailed = errors.New("panel login failed")

// Track is one registration to perform on the panel.
type Track struct {
	ISRC    string
	Artist  string
	Holders string
}

// Config holds the panel credentials.
type Config struct {
	Username string
	Password string
}

// Session owns one headless browser for the lifetime of a worker run. All
// interactions share the single browser tab; the panel keeps login state in
// that session.
type Session struct {
	cfg           Config
	logger        *zap.Logger
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewSession launches headless Chrome. Close must be called on every exit
// path.
func NewSession(cfg Config, logger *zap.Logger) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Session{
		cfg:           cfg,
		logger:        logger,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close tears down the browser and its allocator.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.browserCancel()
	s.allocCancel()
}

// Login submits the panel credentials and classifies the outcome by the
// address the browser lands on: still being on a login URL after the settle
// interval means the credentials were rejected.
func (s *Session) Login(ctx context.Context) error {
	s.logger.Info("logging into the panel")

	runCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()

	var currentURL string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(selLoginUsername, chromedp.ByQuery),
		chromedp.SendKeys(selLoginUsername, s.cfg.Username, chromedp.ByQuery),
		chromedp.SendKeys(selLoginPassword, s.cfg.Password, chromedp.ByQuery),
		chromedp.Click(selLoginSubmit, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&currentURL),
	)
	if err != nil {
		return fmt.Errorf("login interaction: %w", err)
	}

	if !loginSucceeded(currentURL) {
		s.logger.Error("login failed, still on the login page", zap.String("url", currentURL))
		return ErrLoginFailed
	}

	s.logger.Info("login succeeded")
	return nil
}

// RegisterTrack fills and submits the record-creation form for one track.
// The holder checkboxes are clicked in the fixed layout order defined in
// holderCheckboxes.
func (s *Session) RegisterTrack(ctx context.Context, track Track) error {
	runCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()

	actions := []chromedp.Action{
		chromedp.Navigate(addURL),
		chromedp.WaitVisible(selTitle, chromedp.ByQuery),
		chromedp.SendKeys(selTitle, track.Artist, chromedp.ByQuery),
		chromedp.SendKeys(selISRC, track.ISRC, chromedp.ByQuery),
		chromedp.Click(selHolderSelect, chromedp.ByQuery),
		chromedp.WaitVisible(selHolderSearch, chromedp.ByQuery),
		chromedp.SendKeys(selHolderSearch, track.Holders+kb.Enter, chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
	}
	for _, checkbox := range holderCheckboxes {
		actions = append(actions, chromedp.Click(checkbox, chromedp.ByQuery))
	}
	actions = append(actions,
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Click(selAddHolder, chromedp.ByQuery),
		chromedp.Click(selSave, chromedp.ByQuery),
	)

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return fmt.Errorf("register track %s: %w", track.ISRC, err)
	}
	return nil
}

// loginSucceeded reports whether a post-submit address left the login flow.
func loginSucceeded(currentURL string) bool {
	return !strings.Contains(currentURL, "login")
}

// forwardCancel cancels the chromedp run when the caller's context ends.
func forwardCancel(ctx context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
