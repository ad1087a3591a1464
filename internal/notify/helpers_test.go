package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/source"
	"github.com/nhle/fintrack/internal/store"
	"github.com/nhle/fintrack/tests/testutil"
)

// testNow is a Thursday afternoon.
var testNow = time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

var errOffline = errors.New("dial tcp: connection refused")

// fakeRemote records every call made against the remote API.
type fakeRemote struct {
	mu sync.Mutex

	feed       *model.Feed
	feedErr    error
	summary    *model.Summary
	summaryErr error
	markErr    map[model.ID]error
	deleteErr  map[model.ID]error

	listOpts []source.FeedOptions
	marked   []model.ID
	deleted  []model.ID
}

func (f *fakeRemote) ListNotifications(_ context.Context, opts source.FeedOptions) (*model.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listOpts = append(f.listOpts, opts)
	if f.feedErr != nil {
		return nil, f.feedErr
	}
	if f.feed == nil {
		return &model.Feed{}, nil
	}
	cp := *f.feed
	return &cp, nil
}

func (f *fakeRemote) Summary(context.Context) (*model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	if f.summary == nil {
		return &model.Summary{ByCategory: map[string]int{}}, nil
	}
	cp := *f.summary
	return &cp, nil
}

func (f *fakeRemote) MarkRead(_ context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	return f.markErr[id]
}

func (f *fakeRemote) Delete(_ context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr[id]
}

func (f *fakeRemote) calls() (marked, deleted []model.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ID(nil), f.marked...), append([]model.ID(nil), f.deleted...)
}

// failingKV wraps a KV and fails reads or writes on demand.
type failingKV struct {
	store.KV
	getErr error
	setErr error
}

func (k *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if k.getErr != nil {
		return "", false, k.getErr
	}
	return k.KV.Get(ctx, key)
}

func (k *failingKV) Set(ctx context.Context, key, value string) error {
	if k.setErr != nil {
		return k.setErr
	}
	return k.KV.Set(ctx, key, value)
}

type fixture struct {
	agg    *Aggregator
	local  *LocalStore
	kv     store.KV
	remote *fakeRemote
	logs   *test.Hook
}

func newFixture(t *testing.T, remote *fakeRemote, seed bool) *fixture {
	t.Helper()
	return newFixtureWithKV(t, remote, testutil.NewTestStore(t), seed)
}

func newFixtureWithKV(t *testing.T, remote *fakeRemote, kv store.KV, seed bool) *fixture {
	t.Helper()

	logger, hook := test.NewNullLogger()
	now := func() time.Time { return testNow }

	local := NewLocalStore(kv, logger)
	local.now = now

	agg := New(remote, local, Options{
		SeedDemo: seed,
		Now:      now,
		Logger:   logger,
	})
	return &fixture{agg: agg, local: local, kv: kv, remote: remote, logs: hook}
}

func remoteItem(id string, cat model.Category, read bool, created time.Time) model.Notification {
	return model.Notification{
		ID:               model.ID(id),
		Title:            "remote " + id,
		NotificationType: model.TypeTransactionCreated,
		Category:         cat,
		IsRead:           read,
		CreatedAt:        created,
	}
}

func feedOf(items ...model.Notification) *model.Feed {
	return &model.Feed{Groups: []model.Group{{Title: "Today", Notifications: items}}}
}

func countRefs(items []model.Notification, src model.Source) int {
	n := 0
	for _, it := range items {
		if it.Source == src {
			n++
		}
	}
	return n
}
