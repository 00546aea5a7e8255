package dialogue

import (
	"context"
	"errors"
	"sync"
	"time"

	"voicecal/models"
)

// ErrSessionNotFound is returned for unknown or already-removed session IDs.
var ErrSessionNotFound = errors.New("dialogue session not found")

// SessionStore abstracts session persistence so timeout logic stays testable
// and the in-memory map can be swapped for Redis without touching the FSM.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.DialogueSession, error)
	GetByIdentity(ctx context.Context, identity string) (*models.DialogueSession, error)
	Put(ctx context.Context, session *models.DialogueSession) error
	Delete(ctx context.Context, sessionID string) error
	// SweepExpired removes sessions idle since before cutoff and returns how
	// many were dropped. Stores with native TTL may make this a no-op.
	SweepExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// MemorySessionStore keeps sessions in process memory. Sessions are not
// durable across restarts, which matches their conversational lifetime.
type MemorySessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]*models.DialogueSession
	byIdentity map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions:   make(map[string]*models.DialogueSession),
		byIdentity: make(map[string]string),
	}
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*models.DialogueSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *MemorySessionStore) GetByIdentity(_ context.Context, identity string) (*models.DialogueSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byIdentity[identity]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *MemorySessionStore) Put(_ context.Context, session *models.DialogueSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	s.sessions[session.SessionID] = &copied
	s.byIdentity[session.Identity] = session.SessionID
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		if s.byIdentity[sess.Identity] == sessionID {
			delete(s.byIdentity, sess.Identity)
		}
		delete(s.sessions, sessionID)
	}
	return nil
}

func (s *MemorySessionStore) SweepExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastActivityAt.Before(cutoff) {
			if s.byIdentity[sess.Identity] == id {
				delete(s.byIdentity, sess.Identity)
			}
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
