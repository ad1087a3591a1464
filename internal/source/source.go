package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nhle/fintrack/internal/model"
)

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("not found")

// ErrCircuitOpen is returned while the circuit breaker rejects calls
// after repeated transport failures.
var ErrCircuitOpen = errors.New("remote temporarily unavailable")

// AuthError indicates that authentication has failed or expired.
// It is returned by source clients when a 401 response is received.
type AuthError struct {
	BaseURL string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.BaseURL, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusError is a non-2xx response other than 401.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 from the remote.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// FeedOptions controls the remote feed query.
type FeedOptions struct {
	Category    model.Category
	Limit       int
	Skip        int
	IncludeRead bool
}

// Remote is the contract of the remote notification API.
type Remote interface {
	// ListNotifications fetches the grouped feed filtered server-side.
	ListNotifications(ctx context.Context, opts FeedOptions) (*model.Feed, error)

	// Summary fetches total, unread, and per-category counts.
	Summary(ctx context.Context) (*model.Summary, error)

	// MarkRead sets is_read on a single notification.
	MarkRead(ctx context.Context, id model.ID) error

	// Delete removes a single notification.
	Delete(ctx context.Context, id model.ID) error
}
