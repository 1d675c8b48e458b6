package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// Reasons Google attaches to 403 responses that are really rate limits.
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests ||
			(gerr.Code == http.StatusForbidden && hasRateLimitReason(gerr))
	}
	return false
}

// RetryAfter returns the Retry-After header of a Google API error in seconds,
// or zero when absent.
func RetryAfter(err error) int {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs < 0 {
		return 0
	}
	return secs
}

// WrapError maps a Google API error onto the domain sentinels, keeping the
// original error in the chain. Errors that are not API errors are returned as is.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: token refresh: %w", domain.ErrNotAuthenticated, err)
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	var sentinel error
	switch {
	case gerr.Code == http.StatusUnauthorized:
		sentinel = domain.ErrNotAuthenticated
	case gerr.Code == http.StatusForbidden && hasRateLimitReason(gerr):
		sentinel = domain.ErrRateLimited
	case gerr.Code == http.StatusForbidden:
		sentinel = domain.ErrPermissionDenied
	case gerr.Code == http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case gerr.Code == http.StatusConflict:
		sentinel = domain.ErrAlreadyExists
	case gerr.Code == http.StatusTooManyRequests:
		sentinel = domain.ErrRateLimited
	case gerr.Code >= http.StatusInternalServerError:
		sentinel = domain.ErrRemoteUnavailable
	default:
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

func hasRateLimitReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		if rateLimitReasons[item.Reason] {
			return true
		}
	}
	return false
}
