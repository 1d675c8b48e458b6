package drive

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/option"

	"github.com/custodia-labs/sercha-drive/internal/connectors/google"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.RemoteStoreFactory = (*Factory)(nil)

// Factory opens Drive stores from stored user credentials.
// Each user keeps one rate limiter across opens.
type Factory struct {
	creds *google.Credentials
	cfg   Config
	opts  []option.ClientOption

	mu       sync.Mutex
	limiters map[string]*google.RateLimiter
}

// NewFactory creates a factory. Extra client options are appended after the
// token source, which lets tests point the client at a local server.
func NewFactory(creds *google.Credentials, cfg Config, opts ...option.ClientOption) *Factory {
	return &Factory{
		creds:    creds,
		cfg:      cfg,
		opts:     opts,
		limiters: make(map[string]*google.RateLimiter),
	}
}

// Open returns the user's Drive store.
func (f *Factory) Open(ctx context.Context, userID string) (driven.RemoteStore, error) {
	// Token refreshes outlive the caller's request.
	ts, err := f.creds.TokenSource(context.WithoutCancel(ctx), userID)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, f.opts...)
	svc, err := google.NewDriveService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service for %s: %w", userID, err)
	}
	return NewStore(svc, f.cfg, f.limiter(userID)), nil
}

func (f *Factory) limiter(userID string) *google.RateLimiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiters[userID]
	if !ok {
		l = google.NewRateLimiter()
		f.limiters[userID] = l
	}
	return l
}
