package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
)

// ActionStore keeps approval flows in process memory
type ActionStore struct {
	mu      sync.Mutex
	actions map[model.ActionID]*model.Action
}

var _ interfaces.ActionRepository = &ActionStore{}

func NewActionStore() *ActionStore {
	return &ActionStore{
		actions: make(map[model.ActionID]*model.Action),
	}
}

func (s *ActionStore) Get(ctx context.Context, id model.ActionID) (*model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.actions[id]
	if !ok {
		return nil, nil
	}
	return action.Clone(), nil
}

func (s *ActionStore) Put(ctx context.Context, action *model.Action) error {
	if action == nil || action.ID == "" {
		return goerr.New("action id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions[action.ID] = action.Clone()
	return nil
}

func (s *ActionStore) List(ctx context.Context) ([]*model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actions := make([]*model.Action, 0, len(s.actions))
	for _, a := range s.actions {
		actions = append(actions, a.Clone())
	}
	return actions, nil
}
