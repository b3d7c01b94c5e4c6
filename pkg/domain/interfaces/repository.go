package interfaces

import (
	"context"

	"github.com/secmon-lab/kairos/pkg/domain/model"
)

// Backend persists a whole collection as a snapshot keyed by entity id.
// Save replaces everything previously stored.
type Backend[T any] interface {
	Load(ctx context.Context) (map[string]*T, error)
	Save(ctx context.Context, entries map[string]*T) error
}

// SnapshotRepository is an in-memory collection written through to a Backend
type SnapshotRepository[T any] interface {
	// Insert adds v and persists the collection. The insert is undone
	// when persistence fails.
	Insert(ctx context.Context, id string, v *T) error

	// List returns copies of all entries
	List(ctx context.Context) ([]*T, error)

	// Mutate runs fn while holding the collection lock and persists
	// afterward. Changes made by fn are kept even if persistence fails.
	Mutate(ctx context.Context, fn func(entries map[string]*T) error) error
}

type NotificationRepository = SnapshotRepository[model.Notification]

type TodoRepository = SnapshotRepository[model.TodoItem]
