package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
)

// Replies to a /notify request
const (
	MsgNotifyAccepted    = "Got it, processing your notification."
	MsgNeedClarification = "I can set notifications. What should I notify you about, and when? Re-run /notify with a time."
)

// NotifyUseCase is the entry point for interactive requests. It routes the
// text and hands resolved requests and user decisions to the workflow.
type NotifyUseCase struct {
	router  *SessionRouter
	emitter interfaces.EventEmitter
	now     func() time.Time
}

func NewNotifyUseCase(router *SessionRouter, emitter interfaces.EventEmitter) *NotifyUseCase {
	return &NotifyUseCase{
		router:  router,
		emitter: emitter,
		now:     time.Now,
	}
}

// Request routes text from userID in channelID and returns the reply to show
func (uc *NotifyUseCase) Request(ctx context.Context, userID, channelID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", goerr.Wrap(ErrEmptyRequest, "notify text is required", goerr.V(UserIDKey, userID))
	}

	key := model.SessionKey{UserID: userID, ChannelID: channelID}
	decision, err := uc.router.RouteNotify(ctx, key, text, uc.now())
	if err != nil {
		return "", err
	}

	if decision.Kind != model.RouteEmitNotify {
		return MsgNeedClarification, nil
	}

	if err := uc.emitter.Emit(ctx, model.NotifyRequested{
		Text:      decision.NormalizedText,
		UserID:    userID,
		ChannelID: channelID,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to enqueue notify request", goerr.V(UserIDKey, userID))
	}
	return MsgNotifyAccepted, nil
}

func (uc *NotifyUseCase) Confirm(ctx context.Context, actionID model.ActionID, userID string) error {
	return uc.emit(ctx, model.ApprovalConfirmed{ActionID: actionID, UserID: userID})
}

func (uc *NotifyUseCase) Cancel(ctx context.Context, actionID model.ActionID, userID string) error {
	return uc.emit(ctx, model.ApprovalCanceled{ActionID: actionID, UserID: userID})
}

func (uc *NotifyUseCase) SubmitContext(ctx context.Context, actionID model.ActionID, userID, note string) error {
	return uc.emit(ctx, model.ContextSubmitted{ActionID: actionID, UserID: userID, Context: note})
}

func (uc *NotifyUseCase) emit(ctx context.Context, ev model.Event) error {
	if err := uc.emitter.Emit(ctx, ev); err != nil {
		return goerr.Wrap(err, "failed to enqueue event", goerr.V("event", ev.EventName()))
	}
	return nil
}
