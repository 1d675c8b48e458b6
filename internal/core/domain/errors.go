package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates content that no extractor can turn into text.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running for the user.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Authentication Errors.

	// ErrNotAuthenticated indicates missing or invalid remote credentials.
	// It is surfaced immediately and never retried.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied indicates the credentials lack access to a resource.
	ErrPermissionDenied = errors.New("permission denied")

	// Remote Errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	// Retried with backoff only in the embedding and query paths.
	ErrRateLimited = errors.New("rate limited")

	// ErrRemoteUnavailable indicates a transient network or server failure.
	ErrRemoteUnavailable = errors.New("remote unavailable")
)

// ErrorKind classifies a failure for callers that only see a result value.
type ErrorKind string

const (
	// KindNotAuthenticated means remote credentials are missing or invalid.
	KindNotAuthenticated ErrorKind = "not_authenticated"

	// KindTransient means a rate limit or network failure.
	KindTransient ErrorKind = "transient"

	// KindItemSync means one file or chunk failed.
	KindItemSync ErrorKind = "item_sync_failure"

	// KindRunFailure means the top-level sync entry point failed.
	KindRunFailure ErrorKind = "run_failure"

	// KindDataIntegrity means stored chunks are inconsistent (non-fatal).
	KindDataIntegrity ErrorKind = "data_integrity"
)

// SyncError is a structured failure carrying a kind and a message.
type SyncError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewSyncError wraps err with a kind derived from it.
func NewSyncError(err error, format string, args ...any) *SyncError {
	return &SyncError{
		Kind:    KindOf(err),
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *SyncError) Unwrap() error {
	return e.Err
}

// KindOf maps an error to the ErrorKind a caller should act on.
func KindOf(err error) ErrorKind {
	var se *SyncError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se) && se.Kind != "":
		return se.Kind
	case errors.Is(err, ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrRemoteUnavailable):
		return KindTransient
	default:
		return KindItemSync
	}
}

// IndexResult is the outcome of a single indexing operation.
// Exactly one of the success payload or Err is meaningful.
type IndexResult struct {
	// Success is true when the operation completed for every chunk.
	Success bool

	// VectorsUpserted counts chunks written (upsert) or touched (update, delete).
	VectorsUpserted int

	// Err describes the failure when Success is false.
	Err *SyncError
}

// Succeeded builds a successful result.
func Succeeded(vectors int) IndexResult {
	return IndexResult{Success: true, VectorsUpserted: vectors}
}

// Failed builds a failed result from err.
func Failed(err error, format string, args ...any) IndexResult {
	return IndexResult{Err: NewSyncError(err, format, args...)}
}

// Error returns the failure as an error, or nil on success.
func (r IndexResult) Error() error {
	if r.Success || r.Err == nil {
		return nil
	}
	return r.Err
}
