package memory

import (
	"context"
	"sync"
	"time"

	"staybook/internal/app/middleware"
)

// IdempotencyStore keeps replayable results for a process lifetime. The first
// record saved for a key wins until it is older than TTL.
type IdempotencyStore struct {
	TTL   time.Duration
	Clock func() time.Time

	mu      sync.Mutex
	records map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{records: make(map[string]middleware.IdempotencyRecord)}
}

// WithTTL sets the retention mirrored from the mongo TTL index.
func (s *IdempotencyStore) WithTTL(ttl time.Duration) *IdempotencyStore {
	s.TTL = ttl
	return s
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.live(key)
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.live(rec.Key); !taken {
		s.records[rec.Key] = rec
	}
	return nil
}

func (s *IdempotencyStore) live(key string) (middleware.IdempotencyRecord, bool) {
	rec, ok := s.records[key]
	if !ok {
		return middleware.IdempotencyRecord{}, false
	}
	if s.TTL > 0 && !rec.OccurredAt.IsZero() && s.now().Sub(rec.OccurredAt) >= s.TTL {
		delete(s.records, key)
		return middleware.IdempotencyRecord{}, false
	}
	return rec, true
}

func (s *IdempotencyStore) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
