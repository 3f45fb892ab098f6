package httpapi

import (
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

// DefaultMaxSessions bounds how many conversations are kept in memory.
const DefaultMaxSessions = 1000

// SessionFactory starts a new conversation.
type SessionFactory func() driving.ConversationService

// session serialises the turns of one conversation.
type session struct {
	mu       sync.Mutex
	conv     driving.ConversationService
	lastUsed time.Time
}

// sessions tracks live conversations by session ID. When full, the least
// recently used session is dropped.
type sessions struct {
	mu      sync.Mutex
	factory SessionFactory
	byID    map[string]*session
	max     int
	now     func() time.Time
}

func newSessions(factory SessionFactory, max int) *sessions {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &sessions{
		factory: factory,
		byID:    make(map[string]*session),
		max:     max,
		now:     time.Now,
	}
}

// start creates a new session.
func (s *sessions) start() *session {
	sess := &session{conv: s.factory()}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.byID) >= s.max {
		s.evictOldest()
	}
	sess.lastUsed = s.now()
	s.byID[sess.conv.SessionID()] = sess
	return sess
}

// get returns the session with id, or domain.ErrNotFound.
func (s *sessions) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %q", domain.ErrNotFound, id)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

// end forgets the session with id.
func (s *sessions) end(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("%w: session %q", domain.ErrNotFound, id)
	}
	delete(s.byID, id)
	return nil
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// evictOldest must be called with mu held.
func (s *sessions) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.byID {
		if oldestID == "" || sess.lastUsed.Before(oldest) {
			oldestID, oldest = id, sess.lastUsed
		}
	}
	delete(s.byID, oldestID)
}
