package google

import (
	"context"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewDriveService creates a Google Drive API service. Callers pass
// option.WithTokenSource for real use or option.WithEndpoint in tests.
func NewDriveService(ctx context.Context, opts ...option.ClientOption) (*drive.Service, error) {
	return drive.NewService(ctx, opts...)
}
