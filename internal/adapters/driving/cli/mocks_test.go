package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
)

type mockSyncService struct {
	log     *domain.SyncLog
	err     error
	result  domain.IndexResult
	history []domain.SyncLog
	status  *driving.SyncStatus

	calls     []string
	lastEvent domain.FileEvent
	lastLimit int
}

func (m *mockSyncService) FullSync(_ context.Context, userID string) (*domain.SyncLog, error) {
	m.calls = append(m.calls, "full:"+userID)
	return m.log, m.err
}

func (m *mockSyncService) IncrementalSync(_ context.Context, userID string, _ time.Time) (*domain.SyncLog, error) {
	m.calls = append(m.calls, "incremental:"+userID)
	return m.log, m.err
}

func (m *mockSyncService) Sync(_ context.Context, userID string) (*domain.SyncLog, error) {
	m.calls = append(m.calls, "sync:"+userID)
	return m.log, m.err
}

func (m *mockSyncService) SyncFile(_ context.Context, userID, fileID string) domain.IndexResult {
	m.calls = append(m.calls, "file:"+userID+"/"+fileID)
	return m.result
}

func (m *mockSyncService) HandleFileEvent(_ context.Context, userID, fileID string, event domain.FileEvent) domain.IndexResult {
	m.calls = append(m.calls, "event:"+userID+"/"+fileID)
	m.lastEvent = event
	return m.result
}

func (m *mockSyncService) Status(_ context.Context, userID string) (*driving.SyncStatus, error) {
	if m.status != nil {
		return m.status, nil
	}
	return &driving.SyncStatus{UserID: userID}, nil
}

func (m *mockSyncService) History(_ context.Context, _ string, limit int) ([]domain.SyncLog, error) {
	m.lastLimit = limit
	return m.history, m.err
}

type mockSelectionService struct {
	result   domain.IndexResult
	docs     []domain.Document
	metadata *domain.ChunkMetadata
	err      error

	lastSelected bool
	removed      []string
}

func (m *mockSelectionService) SetSelected(_ context.Context, _, _ string, selected bool) domain.IndexResult {
	m.lastSelected = selected
	return m.result
}

func (m *mockSelectionService) GetSelectedDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockSelectionService) GetChunkMetadata(_ context.Context, _, _ string) (*domain.ChunkMetadata, bool, error) {
	return m.metadata, m.metadata != nil, m.err
}

func (m *mockSelectionService) Remove(_ context.Context, _, fileID string) domain.IndexResult {
	m.removed = append(m.removed, fileID)
	return m.result
}

type mockSharingService struct {
	report   domain.PropagationReport
	err      error
	lastPerm domain.Permission
	unshared []string
}

func (m *mockSharingService) Share(_ context.Context, _, _ string, perm domain.Permission) (domain.PropagationReport, error) {
	m.lastPerm = perm
	return m.report, m.err
}

func (m *mockSharingService) Unshare(_ context.Context, _, folderID string) (domain.PropagationReport, error) {
	m.unshared = append(m.unshared, folderID)
	return m.report, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	saved       int
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	m.saved++
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

type mockScheduler struct {
	results []domain.JobResult
	started bool
	stopped bool
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.started = true
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

func (m *mockScheduler) RunOnce(_ context.Context) []domain.JobResult {
	return m.results
}

type mockTokenStore struct {
	clientID string
	tokens   map[string]*oauth2.Token
	saves    int
	saveErr  error
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{tokens: make(map[string]*oauth2.Token)}
}

func (m *mockTokenStore) OAuthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{ClientID: m.clientID, RedirectURL: redirectURL}
}

func (m *mockTokenStore) SetClient(clientID, _ string) { m.clientID = clientID }

func (m *mockTokenStore) SetToken(userID string, token *oauth2.Token) { m.tokens[userID] = token }

func (m *mockTokenStore) RemoveToken(userID string) { delete(m.tokens, userID) }

func (m *mockTokenStore) UserIDs() []string {
	var ids []string
	for id := range m.tokens {
		ids = append(ids, id)
	}
	return ids
}

func (m *mockTokenStore) Save(_ string) error {
	m.saves++
	return m.saveErr
}

type mockLocker struct {
	acquireErr error
	acquired   bool
	released   bool
}

func (m *mockLocker) Acquire() error {
	if m.acquireErr != nil {
		return m.acquireErr
	}
	m.acquired = true
	return nil
}

func (m *mockLocker) Release() error {
	m.released = true
	return nil
}

var errBoom = errors.New("boom")

// withServices installs s for the duration of the test.
func withServices(t *testing.T, s Services) {
	t.Helper()
	prev := Services{
		Sync:        syncService,
		Selection:   selectionService,
		Sharing:     sharingService,
		Settings:    settingsService,
		Scheduler:   scheduler,
		Tokens:      tokenStore,
		TokensPath:  tokensPath,
		Lock:        daemonLock,
		Metrics:     metricsHandler,
		Unavailable: unavailable,
	}
	SetServices(s)
	t.Cleanup(func() { SetServices(prev) })
}

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	resetCommands(rootCmd, ctx)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

// resetCommands restores flag defaults and the context left behind by earlier runs.
func resetCommands(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetCommands(c, ctx)
	}
}
