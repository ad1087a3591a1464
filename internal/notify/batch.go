package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/iter"

	"github.com/nhle/fintrack/internal/model"
)

// Batch operation names used in result messages.
const (
	OpMarkRead = "marked as read"
	OpDelete   = "deleted"
)

// ItemFailure records one notification a batch could not apply.
type ItemFailure struct {
	Ref model.Ref
	Err error
}

// BatchResult is the settled outcome of MarkAllRead or ClearAll.
type BatchResult struct {
	Op        string
	Attempted int
	Succeeded int
	Failures  []ItemFailure

	// Info is set when the batch was a no-op.
	Info string
}

// NoOp reports whether nothing was attempted.
func (r BatchResult) NoOp() bool {
	return r.Attempted == 0
}

// Message is a human-readable summary, e.g. "3 of 5 notifications
// marked as read".
func (r BatchResult) Message() string {
	if r.Info != "" {
		return r.Info
	}
	noun := "notifications"
	if r.Attempted == 1 {
		noun = "notification"
	}
	if len(r.Failures) == 0 {
		return fmt.Sprintf("%d %s %s", r.Succeeded, noun, r.Op)
	}
	return fmt.Sprintf("%d of %d %s %s", r.Succeeded, r.Attempted, noun, r.Op)
}

// Err joins every item failure, or returns nil.
func (r BatchResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Ref.ID, f.Err))
	}
	return errors.Join(errs...)
}

func (r *BatchResult) record(ref model.Ref, err error) {
	r.Attempted++
	if err != nil {
		r.Failures = append(r.Failures, ItemFailure{Ref: ref, Err: err})
		return
	}
	r.Succeeded++
}

// settle applies fn to every ref concurrently and waits for all of them.
// One failure never prevents the others from running.
func settle(ctx context.Context, refs []model.Ref, fn func(context.Context, model.Ref) error) []error {
	return iter.Map(refs, func(ref *model.Ref) error {
		return fn(ctx, *ref)
	})
}
