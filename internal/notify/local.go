package notify

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/store"
)

const (
	// notificationsKey holds the JSON array of local notifications.
	notificationsKey = "notifications"

	// seededKey is set once the demonstration set has been written.
	seededKey = "notifications_seeded"

	localIDPrefix = "local_"
)

// LocalStore is the on-device notification list. Every read-modify-write
// cycle holds mu, so concurrent mutations from one process never lose
// updates.
type LocalStore struct {
	mu      sync.Mutex
	kv      store.KV
	log     logrus.FieldLogger
	now     func() time.Time
	entropy io.Reader
}

// NewLocalStore wraps a key-value backend.
func NewLocalStore(kv store.KV, log logrus.FieldLogger) *LocalStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LocalStore{
		kv:      kv,
		log:     log,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// newID returns a local id. Callers must hold mu.
func (s *LocalStore) newID() model.ID {
	id := ulid.MustNew(ulid.Timestamp(s.now()), s.entropy)
	return model.ID(localIDPrefix + id.String())
}

// load reads the stored list. A missing key or unparseable value yields
// an empty list; only a backend read failure is returned.
func (s *LocalStore) load(ctx context.Context) ([]model.Notification, error) {
	raw, ok, err := s.kv.Get(ctx, notificationsKey)
	if err != nil {
		return nil, fmt.Errorf("reading local notifications: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var list []model.Notification
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.log.WithError(err).Warn("local notifications unreadable, treating as empty")
		return nil, nil
	}

	for i := range list {
		list[i].Source = model.SourceLocal
	}
	return list, nil
}

func (s *LocalStore) save(ctx context.Context, list []model.Notification) error {
	if list == nil {
		list = []model.Notification{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding local notifications: %w", err)
	}
	if err := s.kv.Set(ctx, notificationsKey, string(data)); err != nil {
		return fmt.Errorf("writing local notifications: %w", err)
	}
	return nil
}

// update runs fn inside one serialized read-modify-write cycle. The list
// is written back only when fn reports a change.
func (s *LocalStore) update(
	ctx context.Context,
	fn func([]model.Notification) ([]model.Notification, bool),
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}

	next, changed := fn(list)
	if !changed {
		return nil
	}
	return s.save(ctx, next)
}

// List returns every local notification tagged SourceLocal. Storage
// failures are logged and yield an empty list.
func (s *LocalStore) List(ctx context.Context) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		s.log.WithError(err).Warn("local store unavailable, treating as empty")
		return nil
	}
	return list
}

// Contains reports whether id is in the local store.
func (s *LocalStore) Contains(ctx context.Context, id model.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range list {
		if n.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// IDs returns the set of local ids.
func (s *LocalStore) IDs(ctx context.Context) (map[model.ID]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[model.ID]struct{}, len(list))
	for _, n := range list {
		ids[n.ID] = struct{}{}
	}
	return ids, nil
}

// EnsureSeeded writes the list produced by seed the first time it is
// called against an empty store. It reports whether it seeded. Once the
// marker is written, seeding never happens again, even after the store
// is emptied, until Reset removes the marker.
func (s *LocalStore) EnsureSeeded(
	ctx context.Context,
	seed func(now time.Time, newID func() model.ID) []model.Notification,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok, err := s.kv.Get(ctx, seededKey); err != nil {
		return false, fmt.Errorf("reading seed marker: %w", err)
	} else if ok {
		return false, nil
	}

	list, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	seeded := false
	if len(list) == 0 {
		if err := s.save(ctx, seed(s.now(), s.newID)); err != nil {
			return false, err
		}
		seeded = true
	}

	if err := s.kv.Set(ctx, seededKey, s.now().UTC().Format(time.RFC3339)); err != nil {
		return seeded, fmt.Errorf("writing seed marker: %w", err)
	}
	return seeded, nil
}

// Add appends n with a fresh local id. A zero CreatedAt is set to now.
func (s *LocalStore) Add(ctx context.Context, n model.Notification) (model.Notification, error) {
	err := s.update(ctx, func(list []model.Notification) ([]model.Notification, bool) {
		n.ID = s.newID()
		n.Source = model.SourceLocal
		if n.CreatedAt.IsZero() {
			n.CreatedAt = s.now()
		}
		return append(list, n), true
	})
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// MarkRead sets is_read on every listed id that is present and unread.
// It returns how many records changed. Unknown ids are ignored.
func (s *LocalStore) MarkRead(ctx context.Context, ids ...model.ID) (int, error) {
	want := idSet(ids)
	changed := 0
	err := s.update(ctx, func(list []model.Notification) ([]model.Notification, bool) {
		for i := range list {
			if _, ok := want[list[i].ID]; ok && !list[i].IsRead {
				list[i].IsRead = true
				changed++
			}
		}
		return list, changed > 0
	})
	return changed, err
}

// Remove deletes every listed id that is present and returns how many
// were removed. Unknown ids are ignored.
func (s *LocalStore) Remove(ctx context.Context, ids ...model.ID) (int, error) {
	want := idSet(ids)
	removed := 0
	err := s.update(ctx, func(list []model.Notification) ([]model.Notification, bool) {
		kept := list[:0]
		for _, n := range list {
			if _, ok := want[n.ID]; ok {
				removed++
				continue
			}
			kept = append(kept, n)
		}
		return kept, removed > 0
	})
	return removed, err
}

func idSet(ids []model.ID) map[model.ID]struct{} {
	set := make(map[model.ID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Reset deletes every local notification and the seed marker, so the
// next load seeds again when demo seeding is enabled.
func (s *LocalStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{notificationsKey, seededKey} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("resetting local notifications: %w", err)
		}
	}
	return nil
}
