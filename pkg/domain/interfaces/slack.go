package interfaces

import (
	"context"

	"github.com/secmon-lab/kairos/pkg/domain/model"
)

// ApprovalPresenter renders drafted actions and their outcome to the user
type ApprovalPresenter interface {
	// Prompt renders the draft with confirm, cancel and add context
	// controls. It records the rendered message id on the draft.
	Prompt(ctx context.Context, action *model.Action) error

	// UpdateStatus reports the final state of an action
	UpdateStatus(ctx context.Context, action *model.Action, message string) error

	// UpdateStatusMessage reports a failure that has no action attached
	UpdateStatusMessage(ctx context.Context, channelID, userID, message string) error
}

// Messenger sends plain messages
type Messenger interface {
	SendMessage(ctx context.Context, channelID, content string) error
	SendDirectMessage(ctx context.Context, userID, content string) error
}
