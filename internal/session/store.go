package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const defaultShardCount = 32

// ErrNilMutation is returned when Update is called without a mutation func.
var ErrNilMutation = errors.New("session: mutation func is required")

// Store is the source of truth for per-session state.
//
// Update is the only way to mutate a session: fn runs while the session is
// exclusively held, so counters and latches observed and modified inside fn
// cannot race with another request for the same session. fn must not block.
type Store interface {
	GetOrCreate(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
	Get(ctx context.Context, id string) (Session, bool, error)
	Len() int
}

type shard struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// MemoryStore keeps sessions in a sharded, mutex-guarded map.
type MemoryStore struct {
	shards []*shard
	ttl    time.Duration
	now    func() time.Time
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL evicts sessions idle for longer than ttl. Zero disables eviction.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithShardCount sets the number of lock shards.
func WithShardCount(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.shards = newShards(n)
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		shards: newShards(defaultShardCount),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{sessions: make(map[string]*Session)}
	}
	return shards
}

func (s *MemoryStore) shardFor(id string) *shard {
	return s.shards[xxhash.Sum64String(id)%uint64(len(s.shards))]
}

// GetOrCreate returns a snapshot of the session, creating it when absent.
func (s *MemoryStore) GetOrCreate(ctx context.Context, id string) (Session, error) {
	return s.Update(ctx, id, func(*Session) error { return nil })
}

// Update applies fn to the session under its shard lock. Changes are only
// committed when fn returns nil. The returned value is a deep copy.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	if fn == nil {
		return Session{}, ErrNilMutation
	}
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	id = NormalizeID(id)
	sh := s.shardFor(id)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.sessions[id]
	if !ok || s.expired(current, now) {
		current = &Session{ID: id, CreatedAt: now, LastActivity: now}
	}

	working := current.Clone()
	if err := fn(&working); err != nil {
		return current.Clone(), err
	}
	working.ID = id
	working.LastActivity = now
	sh.sessions[id] = &working
	return working.Clone(), nil
}

// Get returns a snapshot without creating the session.
func (s *MemoryStore) Get(ctx context.Context, id string) (Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, false, err
	}
	id = NormalizeID(id)
	sh := s.shardFor(id)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, ok := sh.sessions[id]
	if !ok || s.expired(current, s.now()) {
		return Session{}, false, nil
	}
	return current.Clone(), true, nil
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.sessions)
		sh.mu.Unlock()
	}
	return total
}

// Sweep removes idle sessions and returns how many were evicted.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.now()
	evicted := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, sess := range sh.sessions {
			if s.expired(sess, now) {
				delete(sh.sessions, id)
				evicted++
			}
		}
		sh.mu.Unlock()
	}
	return evicted
}

// RunJanitor sweeps idle sessions every interval until ctx is cancelled.
// onSweep, when non-nil, receives the number of sessions evicted per pass.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(int)) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := s.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *MemoryStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.LastActivity) > s.ttl
}
