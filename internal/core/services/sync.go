package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncService = (*SyncOrchestrator)(nil)

// SyncOrchestrator mirrors each user's remote files into their namespace.
type SyncOrchestrator struct {
	remotes      driven.RemoteStoreFactory
	extractor    driven.TextExtractor
	indexer      *DocumentIndexer
	logs         driven.SyncLogStore
	states       driven.SyncStateStore
	metrics      driven.SyncMetrics
	rootFolderID string

	now   func() time.Time
	newID func() string

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// Full syncs start at rootFolderID ("root" when empty).
func NewSyncOrchestrator(
	remotes driven.RemoteStoreFactory,
	extractor driven.TextExtractor,
	indexer *DocumentIndexer,
	logs driven.SyncLogStore,
	states driven.SyncStateStore,
	rootFolderID string,
) *SyncOrchestrator {
	if rootFolderID == "" {
		rootFolderID = "root"
	}
	return &SyncOrchestrator{
		remotes:      remotes,
		extractor:    extractor,
		indexer:      indexer,
		logs:         logs,
		states:       states,
		rootFolderID: rootFolderID,
		now:          time.Now,
		newID:        uuid.NewString,
		activeSyncs:  make(map[string]*driving.SyncStatus),
	}
}

// SetMetrics attaches an optional metrics sink.
func (o *SyncOrchestrator) SetMetrics(m driven.SyncMetrics) {
	o.metrics = m
}

// FullSync walks the root folder and syncs every file found.
func (o *SyncOrchestrator) FullSync(ctx context.Context, userID string) (*domain.SyncLog, error) {
	return o.run(ctx, userID, domain.SyncFull, func(ctx context.Context, r *runState) error {
		walker := NewTreeWalker(r.store)
		return walker.Walk(ctx, o.rootFolderID,
			func(ctx context.Context, item domain.RemoteItem) {
				o.processItem(ctx, r, item)
			},
			func(folderID string, err error) {
				r.recordError("list folder %s: %v", folderID, err)
			},
		)
	})
}

// IncrementalSync syncs every file under the root folder modified after
// since. Changed files outside the root, such as files shared with the user,
// are skipped.
func (o *SyncOrchestrator) IncrementalSync(ctx context.Context, userID string, since time.Time) (*domain.SyncLog, error) {
	return o.run(ctx, userID, domain.SyncIncremental, func(ctx context.Context, r *runState) error {
		scope := newFolderScope(ctx, r.store, o.rootFolderID)
		token := ""
		for {
			page, err := r.store.ListModifiedSince(ctx, since, token)
			if err != nil {
				return fmt.Errorf("list changes since %s: %w", since.Format(time.RFC3339), err)
			}
			for _, item := range page.Items {
				if err := ctx.Err(); err != nil {
					return err
				}
				if item.IsFolder() {
					continue
				}
				in, err := scope.contains(ctx, item.Parents)
				if err != nil {
					r.recordError("resolve folders of %s: %v", item.ID, err)
					continue
				}
				if !in {
					logger.Debug("Skipping %s: outside folder %s", item.ID, o.rootFolderID)
					continue
				}
				o.processItem(ctx, r, item)
			}
			if page.NextPageToken == "" || page.NextPageToken == token {
				return nil
			}
			token = page.NextPageToken
		}
	})
}

// Sync runs an incremental sync from the stored watermark, or a full sync
// when the user has never completed one.
func (o *SyncOrchestrator) Sync(ctx context.Context, userID string) (*domain.SyncLog, error) {
	state, err := o.states.Get(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return o.FullSync(ctx, userID)
	case err != nil:
		return nil, fmt.Errorf("get sync state: %w", err)
	case state.LastSyncTime.IsZero():
		return o.FullSync(ctx, userID)
	default:
		return o.IncrementalSync(ctx, userID, state.LastSyncTime)
	}
}

// SyncFile re-indexes a single file for a user.
func (o *SyncOrchestrator) SyncFile(ctx context.Context, userID, fileID string) domain.IndexResult {
	ns, err := domain.NamespaceForUser(userID)
	if err != nil {
		return domain.Failed(err, "sync file %s", fileID)
	}
	store, err := o.remotes.Open(ctx, userID)
	if err != nil {
		return domain.Failed(err, "open remote store for %s", userID)
	}
	res := o.syncFile(ctx, store, ns, fileID)
	if o.metrics != nil {
		o.metrics.ObserveFile(userID, res)
	}
	if !res.Success {
		logger.Warn("Sync of file %s for %s failed: %v", fileID, userID, res.Err)
	}
	return res
}

// HandleFileEvent syncs one file in response to an open, close or change event.
func (o *SyncOrchestrator) HandleFileEvent(ctx context.Context, userID, fileID string, event domain.FileEvent) domain.IndexResult {
	if _, err := domain.ParseFileEvent(string(event)); err != nil {
		return domain.Failed(err, "file event for %s", fileID)
	}
	logger.Debug("File event %s on %s for %s", event, fileID, userID)
	return o.SyncFile(ctx, userID, fileID)
}

// Status returns sync status for a user.
func (o *SyncOrchestrator) Status(ctx context.Context, userID string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	if status, ok := o.activeSyncs[userID]; ok {
		// Return a copy to avoid race conditions
		cp := *status
		o.mu.RUnlock()
		return &cp, nil
	}
	o.mu.RUnlock()

	// Not running - return idle status with the watermark
	status := &driving.SyncStatus{UserID: userID}
	state, err := o.states.Get(ctx, userID)
	switch {
	case err == nil:
		status.LastSyncTime = state.LastSyncTime
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	return status, nil
}

// History returns a user's most recent sync logs, newest first.
func (o *SyncOrchestrator) History(ctx context.Context, userID string, limit int) ([]domain.SyncLog, error) {
	return o.logs.List(ctx, userID, limit)
}

// runState is the mutable state of one sync run.
type runState struct {
	o      *SyncOrchestrator
	userID string
	ns     domain.Namespace
	store  driven.RemoteStore
	log    *domain.SyncLog
	status *driving.SyncStatus
}

func (r *runState) recordError(format string, args ...any) {
	r.o.mu.Lock()
	defer r.o.mu.Unlock()
	r.log.RecordError(format, args...)
	r.status.ErrorCount++
}

func (r *runState) processed() {
	r.o.mu.Lock()
	defer r.o.mu.Unlock()
	r.log.ChangesProcessed++
	r.status.DocumentsProcessed++
}

// run executes one sync run. The log is persisted when the run starts and
// finalised exactly once when it ends; the watermark moves to the run's
// start time only if the run completed.
func (o *SyncOrchestrator) run(
	ctx context.Context,
	userID string,
	syncType domain.SyncType,
	body func(context.Context, *runState) error,
) (*domain.SyncLog, error) {
	ns, err := domain.NamespaceForUser(userID)
	if err != nil {
		return nil, err
	}

	status := &driving.SyncStatus{UserID: userID, Running: true, SyncType: syncType}
	if !o.setStatus(userID, status) {
		return nil, fmt.Errorf("%w for %s", domain.ErrSyncInProgress, userID)
	}
	defer o.clearStatus(userID)

	start := o.now()
	log := domain.NewSyncLog(o.newID(), userID, syncType, start)
	if err := o.logs.Save(ctx, log); err != nil {
		logger.Warn("Could not persist sync log %s: %v", log.ID, err)
	}
	logger.Info("Starting %s sync %s for %s", syncType, log.ID, userID)

	var runErr error
	defer func() {
		o.finalise(context.WithoutCancel(ctx), log, runErr)
	}()

	store, err := o.remotes.Open(ctx, userID)
	if err != nil {
		runErr = o.runError(err, "open remote store for %s", userID)
		return log, runErr
	}

	r := &runState{o: o, userID: userID, ns: ns, store: store, log: log, status: status}
	if err := body(ctx, r); err != nil {
		runErr = o.runError(err, "%s sync for %s", syncType, userID)
		return log, runErr
	}
	return log, nil
}

// processItem syncs one file and records its outcome on the run.
func (o *SyncOrchestrator) processItem(ctx context.Context, r *runState, item domain.RemoteItem) {
	res := o.syncFile(ctx, r.store, r.ns, item.ID)
	r.processed()
	if o.metrics != nil {
		o.metrics.ObserveFile(r.userID, res)
	}
	if !res.Success {
		r.recordError("%s (%s): %v", item.ID, item.Name, res.Err)
		logger.Warn("Sync of %s failed: %v", item.ID, res.Err)
	}
}

// syncFile fetches, extracts and indexes one file. Content that cannot be
// turned into text is skipped, not failed.
func (o *SyncOrchestrator) syncFile(ctx context.Context, store driven.RemoteStore, ns domain.Namespace, fileID string) domain.IndexResult {
	file, err := store.Get(ctx, fileID)
	if err != nil {
		return domain.Failed(err, "get %s", fileID)
	}

	raw, err := store.Download(ctx, file)
	if errors.Is(err, domain.ErrUnsupportedType) {
		logger.Debug("Skipping %s (%s): %v", file.ID, file.MimeType, err)
		return domain.Succeeded(0)
	}
	if err != nil {
		return domain.Failed(err, "download %s", fileID)
	}

	text, err := o.extractor.Extract(ctx, raw)
	if errors.Is(err, domain.ErrUnsupportedType) {
		logger.Debug("Skipping %s (%s): %v", file.ID, raw.MIMEType, err)
		return domain.Succeeded(0)
	}
	if err != nil {
		return domain.Failed(err, "extract %s", fileID)
	}

	doc := documentFrom(file, text, o.now())
	if md, ok, err := o.indexer.GetMetadata(ctx, file.ID, ns); err != nil {
		logger.Warn("Could not read selection of %s, defaulting to unselected: %v", file.ID, err)
	} else if ok {
		doc.IsSelected = md.IsSelected
	}

	return o.indexer.Upsert(ctx, doc, ns)
}

// finalise settles the log, persists it and advances the watermark.
func (o *SyncOrchestrator) finalise(ctx context.Context, log *domain.SyncLog, runErr error) {
	o.mu.Lock()
	log.Finalise(o.now(), runErr)
	o.mu.Unlock()

	if err := o.logs.Save(ctx, log); err != nil {
		logger.Error("Could not persist sync log %s: %v", log.ID, err)
	}

	if log.Status == domain.SyncCompleted {
		state := domain.SyncState{
			UserID:        log.UserID,
			LastSyncTime:  log.StartTime,
			LastSyncLogID: log.ID,
		}
		if err := o.states.Save(ctx, state); err != nil {
			logger.Error("Could not save watermark for %s: %v", log.UserID, err)
		}
	}

	if o.metrics != nil {
		o.metrics.ObserveRun(log)
	}
	logger.Info("Sync %s for %s %s: %d changes, %d errors",
		log.ID, log.UserID, log.Status, log.ChangesProcessed, len(log.Errors))
}

func (o *SyncOrchestrator) runError(err error, format string, args ...any) *domain.SyncError {
	kind := domain.KindRunFailure
	if domain.KindOf(err) == domain.KindNotAuthenticated {
		kind = domain.KindNotAuthenticated
	}
	return &domain.SyncError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// documentFrom builds the indexable document for a remote file.
func documentFrom(file *domain.RemoteFile, text string, now time.Time) *domain.Document {
	acl := domain.AccessControlFrom(file.Owners, file.Permissions)
	doc := &domain.Document{
		ID:            file.ID,
		Title:         file.Name,
		MimeType:      file.MimeType,
		CreatedAt:     file.CreatedTime,
		ModifiedAt:    file.ModifiedTime,
		OwnerID:       acl.OwnerID,
		WebViewLink:   file.WebViewLink,
		Version:       file.Version,
		AccessControl: acl,
		Content:       text,
		LastSyncTime:  now,
	}
	if len(file.Parents) > 0 {
		doc.ParentFolderID = file.Parents[0]
	}
	return doc
}

// setStatus registers a running sync. Returns false if one is already running.
func (o *SyncOrchestrator) setStatus(userID string, status *driving.SyncStatus) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, running := o.activeSyncs[userID]; running {
		return false
	}
	o.activeSyncs[userID] = status
	return true
}

// clearStatus removes the sync status for a user.
func (o *SyncOrchestrator) clearStatus(userID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, userID)
}
