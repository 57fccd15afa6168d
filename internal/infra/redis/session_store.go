package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"peco-service/internal/app"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Notes:
//   - Sessions own timers and subscriber channels, so the live objects stay in a local map.
//   - Redis holds a liveness marker per session (owning user as the value) so other
//     instances and operators can see which sessions are running.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), session.UserID(), s.ttl).Err()
}

// Get returns the local session and refreshes its marker.
func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
	}
	return session, ok
}

// Range visits a copy of the held sessions, so fn may call back into the store.
func (s *SessionStore) Range(fn func(*app.Session) bool) {
	s.mu.RLock()
	held := make([]*app.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		held = append(held, session)
	}
	s.mu.RUnlock()
	for _, session := range held {
		if !fn(session) {
			return
		}
	}
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

func (s *SessionStore) key(sessionID string) string {
	return "peco:session:" + sessionID
}
