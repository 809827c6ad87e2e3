package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgerrors "github.com/kingsofalchemy/ordertracker-backend/pkg/errors"
	"github.com/kingsofalchemy/ordertracker-backend/pkg/redis"
)

const snapshotName = "orders"

// snapshotCache is the slice of the redis client the store needs.
type snapshotCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SnapshotKey(name string) string
}

// SnapshotStore caches the last combined fetch so the API can serve order
// lists without hitting the marketplaces on every request.
type SnapshotStore struct {
	cache snapshotCache
	ttl   time.Duration
}

func NewSnapshotStore(cache snapshotCache, ttl time.Duration) (*SnapshotStore, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("snapshot ttl must be positive")
	}
	return &SnapshotStore{cache: cache, ttl: ttl}, nil
}

// Save overwrites the cached snapshot.
func (s *SnapshotStore) Save(ctx context.Context, result Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "marshal order snapshot")
	}
	if err := s.cache.Set(ctx, s.cache.SnapshotKey(snapshotName), raw, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "store order snapshot")
	}
	return nil
}

// Load returns the cached snapshot, or a not-found error when it expired
// (or was never written).
func (s *SnapshotStore) Load(ctx context.Context) (*Result, error) {
	raw, err := s.cache.Get(ctx, s.cache.SnapshotKey(snapshotName))
	if err != nil {
		if redis.IsNil(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order snapshot not cached")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "load order snapshot")
	}

	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "decode order snapshot")
	}
	return &result, nil
}
