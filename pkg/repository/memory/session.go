package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
)

// SessionStore keeps clarification sessions in process memory
type SessionStore struct {
	mu       sync.Mutex
	sessions map[model.SessionKey]model.PendingSession
}

var _ interfaces.SessionRepository = &SessionStore{}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[model.SessionKey]model.PendingSession),
	}
}

func (s *SessionStore) Get(ctx context.Context, key model.SessionKey) (*model.PendingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (s *SessionStore) Put(ctx context.Context, key model.SessionKey, session *model.PendingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = *session
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, key model.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	return nil
}
