package fuelhistory

import (
	"context"
	"sync"
	"time"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/model"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/repository"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/utils/cache"
	"github.com/mpapenbr/iracelog-fuel-strategy-go/pkg/utils/cache/loadercache"
)

// DbStore adapts the repository functions to the orchestrator's
// HistoryStore.
type DbStore struct {
	conn repository.Querier
}

func NewDbStore(conn repository.Querier) *DbStore {
	return &DbStore{conn: conn}
}

func (s *DbStore) Get(
	ctx context.Context, trackID, carID int,
) (*model.HistoryEntry, error) {
	return LoadByKey(ctx, s.conn, trackID, carID)
}

func (s *DbStore) Upsert(ctx context.Context, entry *model.HistoryEntry) error {
	return Upsert(ctx, s.conn, entry)
}

// delegate is the subset of the store API the cache forwards to.
type delegate interface {
	Get(ctx context.Context, trackID, carID int) (*model.HistoryEntry, error)
	Upsert(ctx context.Context, entry *model.HistoryEntry) error
}

// CachedStore wraps another store with a read-through cache so a
// reconnect with the same track/car combination does not hit the
// database again.
type CachedStore struct {
	delegate delegate
	cache    cache.Cache[historyKey, model.HistoryEntry]
}

func NewCachedStore(delegate delegate, expiration time.Duration) *CachedStore {
	s := &CachedStore{delegate: delegate}
	s.cache = loadercache.New(
		loadercache.WithExpiration[historyKey, model.HistoryEntry](expiration),
		loadercache.WithLoader(func(k historyKey) (*model.HistoryEntry, error) {
			return s.delegate.Get(context.Background(), k.trackID, k.carID)
		}))
	return s
}

func (s *CachedStore) Get(
	ctx context.Context, trackID, carID int,
) (*model.HistoryEntry, error) {
	return s.cache.Get(ctx, historyKey{trackID, carID})
}

func (s *CachedStore) Upsert(ctx context.Context, entry *model.HistoryEntry) error {
	if err := s.delegate.Upsert(ctx, entry); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, historyKey{entry.TrackID, entry.CarID})
	return nil
}

// MemoryStore keeps the statistics in process. Used when no database is
// configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[historyKey]model.HistoryEntry
}

type historyKey struct {
	trackID int
	carID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[historyKey]model.HistoryEntry)}
}

func (s *MemoryStore) Get(
	_ context.Context, trackID, carID int,
) (*model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[historyKey{trackID, carID}]; ok {
		ret := entry
		return &ret, nil
	}
	return nil, nil
}

func (s *MemoryStore) Upsert(_ context.Context, entry *model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[historyKey{entry.TrackID, entry.CarID}] = *entry
	return nil
}
