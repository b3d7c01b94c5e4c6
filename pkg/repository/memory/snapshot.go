package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
)

// SnapshotStore holds a collection in memory and writes the whole
// collection to its backend after every change.
type SnapshotStore[T any] struct {
	mu      sync.Mutex
	entries map[string]*T
	backend interfaces.Backend[T]
	clone   func(*T) *T
}

var (
	_ interfaces.NotificationRepository = &SnapshotStore[model.Notification]{}
	_ interfaces.TodoRepository         = &SnapshotStore[model.TodoItem]{}
)

// NewSnapshotStore loads the initial collection from backend
func NewSnapshotStore[T any](ctx context.Context, backend interfaces.Backend[T], clone func(*T) *T) (*SnapshotStore[T], error) {
	entries, err := backend.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load snapshot")
	}
	if entries == nil {
		entries = make(map[string]*T)
	}

	return &SnapshotStore[T]{
		entries: entries,
		backend: backend,
		clone:   clone,
	}, nil
}

// NewNotificationStore creates a notification collection backed by backend
func NewNotificationStore(ctx context.Context, backend interfaces.Backend[model.Notification]) (*SnapshotStore[model.Notification], error) {
	return NewSnapshotStore(ctx, backend, (*model.Notification).Clone)
}

// NewTodoStore creates a todo collection backed by backend
func NewTodoStore(ctx context.Context, backend interfaces.Backend[model.TodoItem]) (*SnapshotStore[model.TodoItem], error) {
	return NewSnapshotStore(ctx, backend, (*model.TodoItem).Clone)
}

func (s *SnapshotStore[T]) Insert(ctx context.Context, id string, v *T) error {
	if id == "" {
		return goerr.New("entry id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[id]
	s.entries[id] = s.clone(v)

	if err := s.backend.Save(ctx, s.entries); err != nil {
		if existed {
			s.entries[id] = prev
		} else {
			delete(s.entries, id)
		}
		return goerr.Wrap(err, "failed to persist snapshot", goerr.V("id", id))
	}
	return nil
}

func (s *SnapshotStore[T]) List(ctx context.Context) ([]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*T, 0, len(s.entries))
	for _, v := range s.entries {
		result = append(result, s.clone(v))
	}
	return result, nil
}

// Mutate hands the live collection to fn. The lock is held until the
// snapshot has been saved, so fn must not call back into the store.
func (s *SnapshotStore[T]) Mutate(ctx context.Context, fn func(entries map[string]*T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.entries); err != nil {
		return err
	}

	if err := s.backend.Save(ctx, s.entries); err != nil {
		return goerr.Wrap(err, "failed to persist snapshot", goerr.V("count", len(s.entries)))
	}
	return nil
}
