package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"rewriter/internal/buffer"
)

// Session is the state of one chat. Buffer and Authorized are owned by the
// goroutine handling that chat's updates.
type Session struct {
	ID         string
	ChatID     int64
	Buffer     buffer.ArticleBuffer
	Authorized bool

	lastSeen time.Time
}

func New(chatID int64, now time.Time) *Session {
	return &Session{
		ID:       uuid.New().String(),
		ChatID:   chatID,
		lastSeen: now,
	}
}

// Store keeps one isolated session per chat.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// Get returns the session of chatID, creating an empty one on first use,
// and marks it as active.
func (s *Store) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	sess, ok := s.sessions[chatID]
	if !ok {
		sess = New(chatID, now)
		s.sessions[chatID] = sess
	}
	sess.lastSeen = now

	return sess
}

// EvictIdle ends every session that has been inactive for longer than ttl
// and returns how many were removed.
func (s *Store) EvictIdle(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for chatID, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > ttl {
			delete(s.sessions, chatID)
			evicted++
		}
	}

	return evicted
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
