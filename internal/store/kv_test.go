package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/nhle/fintrack/internal/store"
	"github.com/nhle/fintrack/tests/testutil"
)

// exerciseKV runs the behavior every backend must share.
func exerciseKV(t *testing.T, kv store.KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "notifications"); err != nil || ok {
		t.Fatalf("Get missing key = ok %v, err %v", ok, err)
	}

	if err := kv.Set(ctx, "notifications", `[]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "notifications", `[{"id":"local_1"}]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, ok, err := kv.Get(ctx, "notifications")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if got != `[{"id":"local_1"}]` {
		t.Errorf("Get = %q", got)
	}

	if err := kv.Delete(ctx, "notifications"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := kv.Delete(ctx, "notifications"); err != nil {
		t.Fatalf("Delete missing key: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "notifications"); ok {
		t.Error("key still present after Delete")
	}
}

// exerciseClosed checks that every operation on a closed backend fails
// with ErrClosed.
func exerciseClosed(t *testing.T, kv store.KV) {
	t.Helper()
	ctx := context.Background()

	if err := kv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := kv.Get(ctx, "notifications"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if err := kv.Set(ctx, "notifications", "[]"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
	if err := kv.Delete(ctx, "notifications"); !errors.Is(err, store.ErrClosed) {
		t.Errorf("Delete after Close = %v, want ErrClosed", err)
	}
	if err := kv.Close(); !errors.Is(err, store.ErrClosed) {
		t.Errorf("second Close = %v, want ErrClosed", err)
	}
}

func TestSQLiteStore_KV(t *testing.T) {
	exerciseKV(t, testutil.NewTestStore(t))
}

func TestSQLiteStore_Migrations(t *testing.T) {
	s := testutil.NewTestStore(t)

	v, err := s.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 2 {
		t.Errorf("SchemaVersion = %d, want 2", v)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := t.TempDir() + "/fintrack.db"
	ctx := context.Background()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set(ctx, "notifications_seeded", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s.Close()

	s, err = store.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if v, ok, err := s.Get(ctx, "notifications_seeded"); err != nil || !ok || v != "1" {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestRedisStore_KV(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := store.NewRedisStore(context.Background(), store.RedisOptions{
		Addr:      mr.Addr(),
		Namespace: "test",
	})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	exerciseKV(t, s)
}

func TestSQLiteStore_Closed(t *testing.T) {
	exerciseClosed(t, testutil.NewTestStore(t))
}

func TestRedisStore_Closed(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := store.NewRedisStore(context.Background(), store.RedisOptions{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	exerciseClosed(t, s)
}

func TestRedisStore_Namespace(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := store.NewRedisStore(context.Background(), store.RedisOptions{
		Addr:      mr.Addr(),
		Namespace: "alice",
	})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Set(context.Background(), "notifications", "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("alice:notifications") {
		t.Errorf("expected namespaced key, have %v", mr.Keys())
	}
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := store.NewRedisStore(context.Background(), store.RedisOptions{Addr: addr}); err == nil {
		t.Fatal("expected connection error")
	}
}
