package automator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mdpainel/painel-automation/internal/panel"
	"github.com/mdpainel/painel-automation/internal/supabase"
)

type fakeStore struct {
	rows      []supabase.Row
	fetchErr  error
	fetchPage *supabase.Page
	updates   map[string][]string
	updateErr error
}

func newFakeStore(rows ...supabase.Row) *fakeStore {
	return &fakeStore{rows: rows, updates: map[string][]string{}}
}

func (s *fakeStore) FetchPending(_ context.Context, page *supabase.Page) ([]supabase.Row, error) {
	s.fetchPage = page
	return s.rows, s.fetchErr
}

func (s *fakeStore) UpdateStatus(_ context.Context, isrc, status string) error {
	s.updates[isrc] = append(s.updates[isrc], status)
	return s.updateErr
}

type fakePanel struct {
	loginErr    error
	registerErr map[string]error
	registered  []string
	closed      bool
}

func (p *fakePanel) Login(context.Context) error { return p.loginErr }

func (p *fakePanel) RegisterTrack(_ context.Context, track panel.Track) error {
	p.registered = append(p.registered, track.ISRC)
	if p.registerErr != nil {
		return p.registerErr[track.ISRC]
	}
	return nil
}

func (p *fakePanel) Close() { p.closed = true }

type fakeNotifier struct {
	sent []string
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, text string) error {
	n.sent = append(n.sent, text)
	return n.err
}

func newRunner(store *fakeStore, session *fakePanel, notifier *fakeNotifier, cfg Config) *Runner {
	return New(store, func() (Panel, error) { return session, nil }, notifier, cfg, zap.NewNop())
}

func row(isrc string) supabase.Row {
	return supabase.Row{ISRC: isrc, Artist: "Artista", Holders: "Titular"}
}

func TestRunNoRows(t *testing.T) {
	store := newFakeStore()
	session := &fakePanel{}
	notifier := &fakeNotifier{}

	err := newRunner(store, session, notifier, Config{WorkerID: "local"}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, session.closed, "browser must not start when there is nothing to do")
	assert.Empty(t, notifier.sent)
}

func TestRunFetchFailureBehavesLikeEmpty(t *testing.T) {
	store := newFakeStore()
	store.fetchErr = errors.New("backend down")
	session := &fakePanel{}
	notifier := &fakeNotifier{}

	err := newRunner(store, session, notifier, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, session.registered)
	assert.Empty(t, store.updates)
	assert.Empty(t, notifier.sent)
}

func TestRunPassesSliceToStore(t *testing.T) {
	store := newFakeStore()
	page := &supabase.Page{Offset: 250, Limit: 250}

	err := newRunner(store, &fakePanel{}, &fakeNotifier{}, Config{Page: page}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, page, store.fetchPage)
}

func TestRunLoginFailureAbortsBeforeAnyRow(t *testing.T) {
	store := newFakeStore(row("BR1230000001"))
	session := &fakePanel{loginErr: panel.ErrLoginFailed}
	notifier := &fakeNotifier{}

	err := newRunner(store, session, notifier, Config{}).Run(context.Background())
	require.NoError(t, err, "a failed login ends the run cleanly")

	assert.Empty(t, session.registered)
	assert.Empty(t, store.updates)
	assert.Empty(t, notifier.sent)
	assert.True(t, session.closed, "browser must be released on the abort path")
}

func TestRunHappyRowWritesExactlyOneSuccess(t *testing.T) {
	store := newFakeStore(row("BR1230000001"))
	session := &fakePanel{}
	notifier := &fakeNotifier{}

	err := newRunner(store, session, notifier, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{supabase.StatusOK}, store.updates["BR1230000001"])
	assert.True(t, session.closed)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "1 arquivo(s) cadastrado(s)")
}

func TestRunFailingRowWritesExactlyOneError(t *testing.T) {
	store := newFakeStore(row("BR1230000001"), row("BR1230000002"))
	session := &fakePanel{
		registerErr: map[string]error{"BR1230000001": errors.New("selector not found")},
	}
	notifier := &fakeNotifier{}

	err := newRunner(store, session, notifier, Config{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{supabase.StatusError}, store.updates["BR1230000001"])
	assert.Equal(t, []string{supabase.StatusOK}, store.updates["BR1230000002"])
	assert.Equal(t, []string{"BR1230000001", "BR1230000002"}, session.registered,
		"one row failing must not stop the batch")
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "1 arquivo(s) cadastrado(s)")
}

func TestRunIncompleteRowSkippedWithoutStatusWrite(t *testing.T) {
	incomplete := supabase.Row{ISRC: "BR1230000001", Artist: "", Holders: "Titular"}
	store := newFakeStore(incomplete, row("BR1230000002"))
	session := &fakePanel{}
	notifier := &fakeNotifier{}

	err := newRunner(store, session, notifier, Config{}).Run(context.Background())
	require.NoError(t, err)

	_, wrote := store.updates["BR1230000001"]
	assert.False(t, wrote, "skipped rows stay pending, no status write")
	assert.Equal(t, []string{"BR1230000002"}, session.registered)
}

func TestRunStatusWriteFailureNotCounted(t *testing.T) {
	store := newFakeStore(row("BR1230000001"))
	store.updateErr = errors.New("patch rejected")
	session := &fakePanel{}
	notifier := &fakeNotifier{}

	err := newRunner(store, session, notifier, Config{}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "0 arquivo(s) cadastrado(s)")
}

func TestRunNotificationDisabled(t *testing.T) {
	store := newFakeStore(row("BR1230000001"))
	notifier := &fakeNotifier{}

	err := newRunner(store, &fakePanel{}, notifier, Config{DisableNotification: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, notifier.sent)
}

func TestRunNotificationFailureDoesNotFailRun(t *testing.T) {
	store := newFakeStore(row("BR1230000001"))
	notifier := &fakeNotifier{err: errors.New("telegram unreachable")}

	err := newRunner(store, &fakePanel{}, notifier, Config{}).Run(context.Background())
	require.NoError(t, err)
}

func TestRunPanelStartFailure(t *testing.T) {
	store := newFakeStore(row("BR1230000001"))
	runner := New(store, func() (Panel, error) {
		return nil, errors.New("chrome not found")
	}, &fakeNotifier{}, Config{}, zap.NewNop())

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, store.updates)
}
