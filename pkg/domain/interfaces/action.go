package interfaces

import (
	"context"

	"github.com/secmon-lab/kairos/pkg/domain/model"
)

// ActionRepository stores approval flows. Get returns nil without error
// when the action does not exist.
type ActionRepository interface {
	Get(ctx context.Context, id model.ActionID) (*model.Action, error)
	Put(ctx context.Context, action *model.Action) error
	List(ctx context.Context) ([]*model.Action, error)
}

// SessionRepository stores clarification sessions keyed by user and
// channel. Get returns nil without error when no session exists.
type SessionRepository interface {
	Get(ctx context.Context, key model.SessionKey) (*model.PendingSession, error)
	Put(ctx context.Context, key model.SessionKey, session *model.PendingSession) error
	Delete(ctx context.Context, key model.SessionKey) error
}
