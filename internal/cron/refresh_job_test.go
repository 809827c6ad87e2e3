package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/kingsofalchemy/ordertracker-backend/internal/aggregator"
	"github.com/kingsofalchemy/ordertracker-backend/internal/orders"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/enums"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/logger"
)

type stubFetcher struct {
	result aggregator.Result
	calls  int
}

func (s *stubFetcher) FetchAll(ctx context.Context) aggregator.Result {
	s.calls++
	return s.result
}

type stubSaver struct {
	saved []aggregator.Result
	err   error
}

func (s *stubSaver) Save(ctx context.Context, result aggregator.Result) error {
	s.saved = append(s.saved, result)
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestSnapshotRefreshJobRun(t *testing.T) {
	fetcher := &stubFetcher{result: aggregator.Result{
		Orders: []orders.Order{{ID: "s1", Source: enums.SourceShopify}},
		Errors: []string{"Etsy: AUTH_NOT_CONNECTED: Etsy not connected"},
	}}
	saver := &stubSaver{}

	job, err := NewSnapshotRefreshJob(SnapshotRefreshParams{
		Fetcher:  fetcher,
		Snapshot: saver,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected one fetch, got %d", fetcher.calls)
	}
	if len(saver.saved) != 1 {
		t.Fatalf("expected one snapshot save, got %d", len(saver.saved))
	}
	// Source errors ride inside the snapshot instead of failing the job.
	if len(saver.saved[0].Errors) != 1 {
		t.Fatalf("expected source error preserved, got %v", saver.saved[0].Errors)
	}
}

func TestSnapshotRefreshJobSaveFailure(t *testing.T) {
	job, err := NewSnapshotRefreshJob(SnapshotRefreshParams{
		Fetcher:  &stubFetcher{},
		Snapshot: &stubSaver{err: errors.New("redis down")},
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected save failure to fail the job")
	}
}

type fakeLockStore struct {
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: map[string]string{}}
}

func (f *fakeLockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, held := f.values[key]; held {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeLockStore) Get(ctx context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeLockStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockMutualExclusion(t *testing.T) {
	store := newFakeLockStore()
	first, err := NewRedisLock(store, "ot:lock:orders", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, err := NewRedisLock(store, "ot:lock:orders", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ctx := context.Background()
	ok, err := first.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if ok {
		t.Fatal("second worker must not acquire a held lock")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseOnlyOwn(t *testing.T) {
	store := newFakeLockStore()
	lock, err := NewRedisLock(store, "ot:lock:orders", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ctx := context.Background()
	if ok, _ := lock.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}

	// Simulate expiry plus takeover by another worker.
	store.values["ot:lock:orders"] = "someone-else"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["ot:lock:orders"] != "someone-else" {
		t.Fatal("release must not delete another owner's lock")
	}
}
