package shared

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idempotency:"

// ErrIdempotencyConflict indicates a duplicate key.
var ErrIdempotencyConflict = errors.New("idempotent request already processed")

// IdempotencyStore remembers processed request keys for a retention window.
// With a nil Redis client it falls back to an in-process map.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

// CheckAndInsert ensures key uniqueness per module.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, module string) error {
	if s == nil {
		return errors.New("idempotency store not initialised")
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	if _, err := uuid.Parse(key); err != nil {
		return Validation("Idempotency-Key must be a UUID.")
	}
	full := idempotencyPrefix + module + ":" + key
	if s.client == nil {
		return s.checkLocal(full)
	}
	ok, err := s.client.SetNX(ctx, full, s.now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Delete removes a key, typically used to roll back failed processing.
func (s *IdempotencyStore) Delete(ctx context.Context, key, module string) error {
	if s == nil {
		return nil
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	full := idempotencyPrefix + module + ":" + key
	if s.client == nil {
		s.mu.Lock()
		delete(s.seen, full)
		s.mu.Unlock()
		return nil
	}
	return s.client.Del(ctx, full).Err()
}

func (s *IdempotencyStore) checkLocal(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, at := range s.seen {
		if now.Sub(at) > s.ttl {
			delete(s.seen, k)
		}
	}
	if _, ok := s.seen[key]; ok {
		return ErrIdempotencyConflict
	}
	s.seen[key] = now
	return nil
}
