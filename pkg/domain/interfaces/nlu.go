package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/domain/types"
)

// NLU turns free text into a mode specific response
type NLU interface {
	Generate(ctx context.Context, text string, mode types.NLUMode) (string, error)
}

// Classifier decides the intent of a request. It never fails; unclear
// input yields IntentUnknown.
type Classifier interface {
	Classify(ctx context.Context, text string) *model.IntentResult
}

// NotificationPersister stores a confirmed notification
type NotificationPersister interface {
	CreateNotification(ctx context.Context, content, recipients string, target time.Time, channel string) error
}

// MessageFormatter renders the delivery message for a notification
type MessageFormatter interface {
	FormatMessage(ctx context.Context, n *model.Notification, now time.Time) string
}

// EventEmitter publishes events to the workflow
type EventEmitter interface {
	Emit(ctx context.Context, ev model.Event) error
}
