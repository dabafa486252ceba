package fsm

import (
	"sync"
	"time"

	"github.com/dtroode/regbot/internal/model"
)

type userLock struct {
	mu   sync.Mutex
	refs int
}

// Store keeps one session per user. Callers serialize access to a user's
// session with Lock; the store mutex only guards the maps.
type Store struct {
	mu       sync.Mutex
	locks    map[int64]*userLock
	sessions map[int64]*model.Session
	now      func() time.Time
	lastGen  uint64
}

func NewStore() *Store {
	return newStore(time.Now)
}

func newStore(now func() time.Time) *Store {
	return &Store{
		locks:    make(map[int64]*userLock),
		sessions: make(map[int64]*model.Session),
		now:      now,
	}
}

// Lock acquires the user's exclusive lock and returns its release func.
func (s *Store) Lock(userID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// Get returns the user's session. The caller must hold the user's lock.
func (s *Store) Get(userID int64) (*model.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	return session, ok
}

// Start replaces any existing session with a fresh one of a new generation.
func (s *Store) Start(userID int64) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := model.NewSession(userID, s.nextGeneration())
	s.sessions[userID] = session
	return session
}

// nextGeneration returns the wall clock in nanoseconds, bumped past the last
// value issued. Generations keep growing across process restarts, so a
// durable submission ledger never sees a reused key.
func (s *Store) nextGeneration() uint64 {
	gen := uint64(s.now().UnixNano())
	if gen <= s.lastGen {
		gen = s.lastGen + 1
	}
	s.lastGen = gen
	return gen
}

// Delete removes the user's session. It reports whether one existed.
func (s *Store) Delete(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[userID]
	delete(s.sessions, userID)
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
