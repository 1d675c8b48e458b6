package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-drive/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// dbFileName is the database file inside the data directory.
const dbFileName = "sercha-drive.db"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-drive/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-drive", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL lets history reads proceed while a sync writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SyncStateStore returns a SyncStateStore interface backed by this store.
func (s *Store) SyncStateStore() driven.SyncStateStore {
	return &syncStateStore{store: s}
}

// SyncLogStore returns a SyncLogStore interface backed by this store.
func (s *Store) SyncLogStore() driven.SyncLogStore {
	return &syncLogStore{store: s}
}

// ChunkRegistry returns a ChunkRegistry interface backed by this store.
func (s *Store) ChunkRegistry() driven.ChunkRegistry {
	return &chunkRegistry{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// apply runs one migration and records its version atomically.
func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Sync State Store ====================

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// Save stores or updates sync state.
func (s *syncStateStore) Save(ctx context.Context, state domain.SyncState) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_states (user_id, last_sync_time, last_sync_log_id)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			last_sync_time = excluded.last_sync_time,
			last_sync_log_id = excluded.last_sync_log_id
	`, state.UserID, state.LastSyncTime.UTC(), state.LastSyncLogID)

	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

// Get retrieves sync state for a user.
func (s *syncStateStore) Get(ctx context.Context, userID string) (*domain.SyncState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT user_id, last_sync_time, last_sync_log_id
		FROM sync_states WHERE user_id = ?
	`, userID)

	var state domain.SyncState
	if err := row.Scan(&state.UserID, &state.LastSyncTime, &state.LastSyncLogID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}
	state.LastSyncTime = state.LastSyncTime.UTC()

	return &state, nil
}

// Delete removes sync state for a user.
func (s *syncStateStore) Delete(ctx context.Context, userID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sync_states WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("deleting sync state: %w", err)
	}
	return nil
}

// ==================== Sync Log Store ====================

// syncLogStore implements driven.SyncLogStore.
type syncLogStore struct {
	store *Store
}

var _ driven.SyncLogStore = (*syncLogStore)(nil)

// Save creates or updates a log by ID.
func (s *syncLogStore) Save(ctx context.Context, log *domain.SyncLog) error {
	if log == nil || log.ID == "" {
		return fmt.Errorf("%w: sync log needs an ID", domain.ErrInvalidInput)
	}

	errorsJSON, err := json.Marshal(nonNil(log.Errors))
	if err != nil {
		return fmt.Errorf("marshalling errors: %w", err)
	}

	var endTime sql.NullTime
	if !log.EndTime.IsZero() {
		endTime = sql.NullTime{Time: log.EndTime.UTC(), Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_logs (id, user_id, start_time, end_time, status, sync_type, changes_processed, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			end_time = excluded.end_time,
			status = excluded.status,
			changes_processed = excluded.changes_processed,
			errors = excluded.errors
	`, log.ID, log.UserID, log.StartTime.UTC(), endTime, string(log.Status), string(log.SyncType),
		log.ChangesProcessed, string(errorsJSON))

	if err != nil {
		return fmt.Errorf("saving sync log: %w", err)
	}
	return nil
}

// Get retrieves a log by ID.
func (s *syncLogStore) Get(ctx context.Context, id string) (*domain.SyncLog, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, user_id, start_time, end_time, status, sync_type, changes_processed, errors
		FROM sync_logs WHERE id = ?
	`, id)

	log, err := scanSyncLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return log, nil
}

// List returns a user's most recent logs, newest first.
func (s *syncLogStore) List(ctx context.Context, userID string, limit int) ([]domain.SyncLog, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, user_id, start_time, end_time, status, sync_type, changes_processed, errors
		FROM sync_logs WHERE user_id = ?
		ORDER BY start_time DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.SyncLog
	for rows.Next() {
		log, err := scanSyncLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sync logs: %w", err)
	}
	return logs, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncLog(row rowScanner) (*domain.SyncLog, error) {
	var log domain.SyncLog
	var endTime sql.NullTime
	var status, syncType, errorsJSON string
	err := row.Scan(&log.ID, &log.UserID, &log.StartTime, &endTime, &status, &syncType,
		&log.ChangesProcessed, &errorsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning sync log: %w", err)
	}

	log.StartTime = log.StartTime.UTC()
	if endTime.Valid {
		log.EndTime = endTime.Time.UTC()
	}
	log.Status = domain.SyncStatus(status)
	log.SyncType = domain.SyncType(syncType)
	if err := json.Unmarshal([]byte(errorsJSON), &log.Errors); err != nil {
		return nil, fmt.Errorf("unmarshalling errors: %w", err)
	}
	if len(log.Errors) == 0 {
		log.Errors = nil
	}
	return &log, nil
}

// ==================== Chunk Registry ====================

// chunkRegistry implements driven.ChunkRegistry.
type chunkRegistry struct {
	store *Store
}

var _ driven.ChunkRegistry = (*chunkRegistry)(nil)

// Put replaces the chunk IDs recorded for a document.
func (r *chunkRegistry) Put(ctx context.Context, ns domain.Namespace, baseID string, chunkIDs []string) error {
	idsJSON, err := json.Marshal(nonNil(chunkIDs))
	if err != nil {
		return fmt.Errorf("marshalling chunk ids: %w", err)
	}

	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO chunk_registry (namespace, base_id, chunk_ids)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace, base_id) DO UPDATE SET
			chunk_ids = excluded.chunk_ids
	`, ns.String(), baseID, string(idsJSON))

	if err != nil {
		return fmt.Errorf("saving chunk ids: %w", err)
	}
	return nil
}

// Get returns the recorded chunk IDs in index order.
func (r *chunkRegistry) Get(ctx context.Context, ns domain.Namespace, baseID string) ([]string, bool, error) {
	var idsJSON string
	err := r.store.db.QueryRowContext(ctx,
		"SELECT chunk_ids FROM chunk_registry WHERE namespace = ? AND base_id = ?",
		ns.String(), baseID,
	).Scan(&idsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying chunk ids: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(idsJSON), &ids); err != nil {
		return nil, false, fmt.Errorf("unmarshalling chunk ids: %w", err)
	}
	return ids, true, nil
}

// Remove forgets a document.
func (r *chunkRegistry) Remove(ctx context.Context, ns domain.Namespace, baseID string) error {
	_, err := r.store.db.ExecContext(ctx,
		"DELETE FROM chunk_registry WHERE namespace = ? AND base_id = ?", ns.String(), baseID)
	if err != nil {
		return fmt.Errorf("deleting chunk ids: %w", err)
	}
	return nil
}

// nonNil keeps JSON columns as arrays rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
