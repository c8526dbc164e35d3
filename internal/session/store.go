package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/dataset"
	"github.com/eugenenazirov/smartpack/internal/engine"
)

const (
	// DefaultDatasetSize matches the record count of the reference dashboard.
	DefaultDatasetSize = 50
	// DefaultMaxDatasetSize bounds how many records a single session may request.
	DefaultMaxDatasetSize = 10_000
	// DefaultTTL is how long an idle session is kept.
	DefaultTTL = 30 * time.Minute
	// DefaultMaxSessions bounds how many sessions are kept in memory.
	DefaultMaxSessions = 1000
)

// ErrNotFound is returned when a session id is unknown or has expired.
var ErrNotFound = errors.New("session not found")

// Store keeps session-scoped state.
type Store interface {
	Create(size int, seed *uint64) (*Session, error)
	Get(id string) (*Session, error)
	Delete(id string) error
	Len() int
}

// MemoryStore keeps sessions in-memory and guards access with a RWMutex.
type MemoryStore struct {
	catalog *catalog.Catalog
	engine  engine.Engine
	logger  *zap.Logger
	clock   func() time.Time
	newID   func() string

	ttl         time.Duration
	maxSessions int
	maxSize     int
	baseSeed    uint64
	created     atomic.Uint64

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStore) {
		s.clock = clock
	}
}

// WithLogger attaches a logger for session lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *MemoryStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTTL sets the idle expiry. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// WithMaxSessions caps the number of live sessions. Zero means unbounded.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStore) {
		s.maxSessions = n
	}
}

// WithMaxDatasetSize caps the records a session may request. Zero means unbounded.
func WithMaxDatasetSize(n int) Option {
	return func(s *MemoryStore) {
		s.maxSize = n
	}
}

// WithBaseSeed makes sessions created without an explicit seed reproducible:
// the n-th such session is seeded with base+n. Zero keeps seeds random.
func WithBaseSeed(base uint64) Option {
	return func(s *MemoryStore) {
		s.baseSeed = base
	}
}

// NewMemoryStore creates an empty store that generates datasets from cat.
func NewMemoryStore(cat *catalog.Catalog, eng engine.Engine, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		catalog:     cat,
		engine:      eng,
		logger:      zap.NewNop(),
		clock:       func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
		ttl:         DefaultTTL,
		maxSessions: DefaultMaxSessions,
		maxSize:     DefaultMaxDatasetSize,
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create generates a new dataset of size records and registers a session for it.
func (s *MemoryStore) Create(size int, seed *uint64) (*Session, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", dataset.ErrInvalidConfiguration, size, s.maxSize)
	}

	n := s.created.Add(1)
	var sessionSeed uint64
	switch {
	case seed != nil:
		sessionSeed = *seed
	case s.baseSeed != 0:
		sessionSeed = s.baseSeed + n
	default:
		sessionSeed = rand.Uint64()
	}

	rng := newRand(sessionSeed)
	data, err := dataset.Generate(size, s.catalog, rng)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	sess := &Session{
		id:        s.newID(),
		seed:      sessionSeed,
		createdAt: now,
		data:      data,
		catalog:   s.catalog,
		engine:    s.engine,
		rng:       rng,
		lastSeen:  now,
	}

	s.mu.Lock()
	if s.maxSessions > 0 {
		for len(s.sessions) >= s.maxSessions {
			s.evictOldestLocked()
		}
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Debug("session created",
		zap.String("session_id", sess.id),
		zap.Int("size", size),
		zap.Uint64("seed", sessionSeed),
	)
	return sess, nil
}

// Get returns a live session and refreshes its idle timer.
func (s *MemoryStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	now := s.clock()
	if s.expired(sess, now) {
		s.remove(id, "expired")
		return nil, ErrNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(id string) error {
	if !s.remove(id, "deleted") {
		return ErrNotFound
	}
	return nil
}

// Len returns the number of sessions currently held, expired ones included until reaped.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Reap removes every session idle for longer than the TTL and returns how many were removed.
func (s *MemoryStore) Reap() int {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("sessions reaped", zap.Int("count", removed), zap.Int("remaining", len(s.sessions)))
	}
	return removed
}

// Janitor reaps expired sessions every interval until ctx is cancelled.
func (s *MemoryStore) Janitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap()
		}
	}
}

func (s *MemoryStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeenAt()) > s.ttl
}

func (s *MemoryStore) remove(id, reason string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.logger.Debug("session removed", zap.String("session_id", id), zap.String("reason", reason))
	}
	return ok
}

func (s *MemoryStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, sess := range s.sessions {
		seen := sess.lastSeenAt()
		if oldestID == "" || seen.Before(oldest) {
			oldestID, oldest = id, seen
		}
	}
	if oldestID == "" {
		return
	}
	delete(s.sessions, oldestID)
	s.logger.Debug("session evicted", zap.String("session_id", oldestID))
}
