package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/source"
)

// ErrInvalidCategory is returned by Load for an unknown filter.
var ErrInvalidCategory = errors.New("invalid category")

// View is the merged, grouped result of Load.
type View struct {
	Category model.Category
	Groups   []model.Group
	Summary  model.Summary

	// Degraded is set when the remote feed or summary could not be
	// fetched and local-only values were used in its place.
	Degraded  bool
	RemoteErr error

	LoadedAt time.Time
}

// Visible flattens the groups into display order.
func (v *View) Visible() []model.Notification {
	if v == nil {
		return nil
	}
	return model.Feed{Groups: v.Groups}.Flatten()
}

// Options configures an Aggregator. Zero values select defaults.
type Options struct {
	// SeedDemo seeds the demonstration set on the first load.
	SeedDemo bool

	// LargeTransactionThreshold is the amount RecordTransaction alerts
	// above.
	LargeTransactionThreshold float64

	// FeedOptions builds the remote query for a category.
	FeedOptions func(model.Category) source.FeedOptions

	Now    func() time.Time
	Logger logrus.FieldLogger
}

// Aggregator merges the remote feed with the local store and routes
// mutations to whichever side owns a notification.
type Aggregator struct {
	remote    source.Remote
	local     *LocalStore
	seed      bool
	threshold float64
	feedOpts  func(model.Category) source.FeedOptions
	now       func() time.Time
	log       logrus.FieldLogger
}

// New creates an Aggregator.
func New(remote source.Remote, local *LocalStore, opts Options) *Aggregator {
	a := &Aggregator{
		remote:    remote,
		local:     local,
		seed:      opts.SeedDemo,
		threshold: opts.LargeTransactionThreshold,
		feedOpts:  opts.FeedOptions,
		now:       opts.Now,
		log:       opts.Logger,
	}
	if a.threshold <= 0 {
		a.threshold = 500
	}
	if a.feedOpts == nil {
		a.feedOpts = func(c model.Category) source.FeedOptions {
			return source.FeedOptions{Category: c, Limit: 50}
		}
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.log == nil {
		a.log = logrus.StandardLogger()
	}
	return a
}

// Load returns the merged view for category. Remote failures degrade to
// local-only values and are reported on the View; they never fail Load.
func (a *Aggregator) Load(ctx context.Context, category model.Category) (*View, error) {
	if category == "" {
		category = model.CategoryAll
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	var (
		feed       *model.Feed
		feedErr    error
		summary    *model.Summary
		summaryErr error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		feed, feedErr = a.remote.ListNotifications(ctx, a.feedOpts(category))
	})
	wg.Go(func() {
		summary, summaryErr = a.remote.Summary(ctx)
	})

	if a.seed {
		if seeded, err := a.local.EnsureSeeded(ctx, DemoNotifications); err != nil {
			a.log.WithError(err).Warn("seeding demonstration notifications failed")
		} else if seeded {
			a.log.Info("seeded demonstration notifications")
		}
	}
	local := a.local.List(ctx)

	wg.Wait()

	var merged []model.Notification
	for _, n := range local {
		if category.Matches(n.Category) {
			merged = append(merged, n)
		}
	}

	if feedErr != nil {
		a.log.WithError(feedErr).WithField("category", category).Warn("remote feed unavailable, showing local only")
	} else if feed != nil {
		for _, n := range feed.Flatten() {
			if !category.Matches(n.Category) {
				continue
			}
			n.Source = model.SourceRemote
			merged = append(merged, n)
		}
	}

	if summaryErr != nil {
		a.log.WithError(summaryErr).Warn("remote summary unavailable, counting local only")
		summary = nil
	}

	now := a.now()
	return &View{
		Category:  category,
		Groups:    GroupByDay(merged, now),
		Summary:   Summarize(summary, local),
		Degraded:  feedErr != nil || summaryErr != nil,
		RemoteErr: errors.Join(feedErr, summaryErr),
		LoadedAt:  now,
	}, nil
}

// resolve returns the owning source of ref. Untagged refs are local when
// their id is present in the local store.
func (a *Aggregator) resolve(ctx context.Context, ref model.Ref) (model.Source, error) {
	if ref.Source != model.SourceUnknown {
		return ref.Source, nil
	}
	found, err := a.local.Contains(ctx, ref.ID)
	if err != nil {
		return model.SourceUnknown, err
	}
	if found {
		return model.SourceLocal, nil
	}
	return model.SourceRemote, nil
}

// MarkRead marks one notification read in the store that owns it. A
// remote 404 means the notification is already gone and is not an error.
func (a *Aggregator) MarkRead(ctx context.Context, ref model.Ref) error {
	src, err := a.resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", ref.ID, err)
	}

	if src == model.SourceLocal {
		if _, err := a.local.MarkRead(ctx, ref.ID); err != nil {
			return fmt.Errorf("marking notification %s as read: %w", ref.ID, err)
		}
		return nil
	}

	if err := a.markRemoteRead(ctx, ref); err != nil {
		return fmt.Errorf("marking notification %s as read: %w", ref.ID, err)
	}
	return nil
}

func (a *Aggregator) markRemoteRead(ctx context.Context, ref model.Ref) error {
	err := a.remote.MarkRead(ctx, ref.ID)
	if source.IsNotFound(err) {
		a.log.WithField("id", ref.ID).Debug("remote notification already gone")
		return nil
	}
	return err
}

// Delete removes one notification from the store that owns it. A
// missing local id is a no-op; a failed remote delete, 404 included, is
// returned.
func (a *Aggregator) Delete(ctx context.Context, ref model.Ref) error {
	src, err := a.resolve(ctx, ref)
	if err != nil {
		return fmt.Errorf("deleting notification %s: %w", ref.ID, err)
	}

	if src == model.SourceLocal {
		if _, err := a.local.Remove(ctx, ref.ID); err != nil {
			return fmt.Errorf("deleting notification %s: %w", ref.ID, err)
		}
		return nil
	}

	if err := a.remote.Delete(ctx, ref.ID); err != nil {
		return fmt.Errorf("deleting notification %s: %w", ref.ID, err)
	}
	return nil
}

// partition splits visible into local ids and remote refs.
func (a *Aggregator) partition(ctx context.Context, visible []model.Notification) ([]model.Ref, []model.Ref, error) {
	var local, remote []model.Ref
	var localIDs map[model.ID]struct{}

	for _, n := range visible {
		ref := n.Ref()
		if ref.Source == model.SourceUnknown {
			if localIDs == nil {
				ids, err := a.local.IDs(ctx)
				if err != nil {
					return nil, nil, err
				}
				localIDs = ids
			}
			ref.Source = model.SourceRemote
			if _, ok := localIDs[ref.ID]; ok {
				ref.Source = model.SourceLocal
			}
		}

		if ref.Source == model.SourceLocal {
			local = append(local, ref)
		} else {
			remote = append(remote, ref)
		}
	}
	return local, remote, nil
}

// MarkAllRead marks every unread notification in visible as read. Local
// items are updated in one write; remote items get one request each,
// dispatched concurrently and all awaited.
func (a *Aggregator) MarkAllRead(ctx context.Context, visible []model.Notification) BatchResult {
	res := BatchResult{Op: OpMarkRead}

	var unread []model.Notification
	for _, n := range visible {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	if len(unread) == 0 {
		res.Info = "No unread notifications"
		return res
	}

	return a.runBatch(ctx, unread, res,
		func(ctx context.Context, ids []model.ID) error {
			_, err := a.local.MarkRead(ctx, ids...)
			return err
		},
		a.markRemoteRead,
	)
}

// ClearAll deletes every notification in visible. Local items are removed
// in one write; remote items get one DELETE each, concurrently.
func (a *Aggregator) ClearAll(ctx context.Context, visible []model.Notification) BatchResult {
	res := BatchResult{Op: OpDelete}
	if len(visible) == 0 {
		res.Info = "No notifications to clear"
		return res
	}

	return a.runBatch(ctx, visible, res,
		func(ctx context.Context, ids []model.ID) error {
			_, err := a.local.Remove(ctx, ids...)
			return err
		},
		func(ctx context.Context, ref model.Ref) error {
			return a.remote.Delete(ctx, ref.ID)
		},
	)
}

func (a *Aggregator) runBatch(
	ctx context.Context,
	items []model.Notification,
	res BatchResult,
	applyLocal func(context.Context, []model.ID) error,
	applyRemote func(context.Context, model.Ref) error,
) BatchResult {
	localRefs, remoteRefs, err := a.partition(ctx, items)
	if err != nil {
		for _, n := range items {
			res.record(n.Ref(), err)
		}
		return res
	}

	if len(localRefs) > 0 {
		ids := make([]model.ID, len(localRefs))
		for i, r := range localRefs {
			ids[i] = r.ID
		}
		localErr := applyLocal(ctx, ids)
		for _, r := range localRefs {
			res.record(r, localErr)
		}
	}

	errs := settle(ctx, remoteRefs, applyRemote)
	for i, r := range remoteRefs {
		res.record(r, errs[i])
	}

	if len(res.Failures) > 0 {
		a.log.WithFields(logrus.Fields{
			"op":        res.Op,
			"attempted": res.Attempted,
			"failed":    len(res.Failures),
		}).Warn("batch partially failed")
	}
	return res
}
