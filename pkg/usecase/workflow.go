package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/domain/types"
	"github.com/secmon-lab/kairos/pkg/utils/errutil"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
)

const (
	msgPersistFailed = "Failed to persist notification."
	msgCanceled      = "Canceled notification request."
)

// ApprovalWorkflow turns NotifyRequested events into drafted actions and
// resolves them from the owner's decision. It is the only writer of actions.
//
// The action store is never locked across a collaborator call: actions are
// read as copies, changed, and written back.
type ApprovalWorkflow struct {
	actions   interfaces.ActionRepository
	nlu       interfaces.NLU
	presenter interfaces.ApprovalPresenter
	persister interfaces.NotificationPersister
	now       func() time.Time
}

type WorkflowOption func(*ApprovalWorkflow)

// WithWorkflowClock replaces time.Now
func WithWorkflowClock(now func() time.Time) WorkflowOption {
	return func(w *ApprovalWorkflow) {
		w.now = now
	}
}

func NewApprovalWorkflow(actions interfaces.ActionRepository, nlu interfaces.NLU, presenter interfaces.ApprovalPresenter, persister interfaces.NotificationPersister, opts ...WorkflowOption) *ApprovalWorkflow {
	w := &ApprovalWorkflow{
		actions:   actions,
		nlu:       nlu,
		presenter: presenter,
		persister: persister,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleEvent dispatches ev. Collaborator failures are reported to the
// user, not returned. The returned error is an action store failure.
func (w *ApprovalWorkflow) HandleEvent(ctx context.Context, ev model.Event) error {
	switch e := ev.(type) {
	case model.NotifyRequested:
		return w.handleNotifyRequested(ctx, e)
	case model.ApprovalConfirmed:
		return w.handleConfirmed(ctx, e)
	case model.ApprovalCanceled:
		return w.handleCanceled(ctx, e)
	case model.ContextSubmitted:
		return w.handleContextSubmitted(ctx, e)
	default:
		logging.From(ctx).Warn("Unsupported event", slog.String("event", ev.EventName()))
		return nil
	}
}

// GetAction returns a copy of the action, or nil if it does not exist
func (w *ApprovalWorkflow) GetAction(ctx context.Context, id model.ActionID) (*model.Action, error) {
	action, err := w.actions.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get action", goerr.V(ActionIDKey, id))
	}
	return action, nil
}

func (w *ApprovalWorkflow) handleNotifyRequested(ctx context.Context, e model.NotifyRequested) error {
	raw, err := w.nlu.Generate(ctx, e.Text, types.NLUModeNotification)
	if err != nil {
		w.reportFailure(ctx, e.ChannelID, e.UserID, fmt.Sprintf("Failed to call the language model for notification: %v", err))
		return nil
	}

	payload, err := model.ParseNotificationPayload(raw)
	if err != nil {
		w.reportFailure(ctx, e.ChannelID, e.UserID, fmt.Sprintf("Failed to parse notification JSON: %v", err))
		return nil
	}

	now := w.now()
	action := model.NewNotificationAction(e.UserID, e.ChannelID, &model.NotificationDraft{
		Content:      payload.Content,
		Time:         payload.Time,
		OriginalText: e.Text,
		ExpiresAt:    now.Add(model.ApprovalWindow),
	}, now)

	if err := w.presenter.Prompt(ctx, action); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to prompt for approval", goerr.V(ActionIDKey, action.ID)), "approval prompt failed")
		action.Status = types.ActionStatusFailed
	}

	if err := w.actions.Put(ctx, action); err != nil {
		return goerr.Wrap(err, "failed to store action", goerr.V(ActionIDKey, action.ID))
	}
	return nil
}

// loadPending returns the action if userID may decide on it right now
func (w *ApprovalWorkflow) loadPending(ctx context.Context, id model.ActionID, userID string) (*model.Action, error) {
	action, err := w.actions.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get action", goerr.V(ActionIDKey, id))
	}
	if action == nil || !action.AcceptsDecisionFrom(userID) {
		logging.From(ctx).Debug("Ignoring decision",
			slog.String(ActionIDKey, id.String()),
			slog.String(UserIDKey, userID))
		return nil, nil
	}
	return action, nil
}

func (w *ApprovalWorkflow) handleConfirmed(ctx context.Context, e model.ApprovalConfirmed) error {
	action, err := w.loadPending(ctx, e.ActionID, e.UserID)
	if err != nil || action == nil {
		return err
	}

	action.Status = types.ActionStatusApproved
	action.UpdatedAt = w.now()

	switch {
	case action.Draft == nil:
		action.Status = types.ActionStatusFailed
		w.reportFailure(ctx, action.ChannelID, action.UserID, msgPersistFailed)

	default:
		draft := action.Draft
		if err := w.persister.CreateNotification(ctx, draft.Content, action.UserID, draft.Time, action.ChannelID); err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to persist notification", goerr.V(ActionIDKey, action.ID)), "notification persistence failed")
			action.Status = types.ActionStatusFailed
			w.reportFailure(ctx, action.ChannelID, action.UserID, msgPersistFailed)
			break
		}

		action.Status = types.ActionStatusCompleted
		msg := fmt.Sprintf("Confirmed! I'll notify you: \"%s\" at %s", draft.Content, model.FormatTime(draft.Time))
		if err := w.presenter.UpdateStatus(ctx, action, msg); err != nil {
			_ = errutil.Handle(ctx, err, "failed to update approval status")
		}
	}

	action.UpdatedAt = w.now()
	if err := w.actions.Put(ctx, action); err != nil {
		return goerr.Wrap(err, "failed to store action", goerr.V(ActionIDKey, action.ID))
	}
	return nil
}

func (w *ApprovalWorkflow) handleCanceled(ctx context.Context, e model.ApprovalCanceled) error {
	action, err := w.loadPending(ctx, e.ActionID, e.UserID)
	if err != nil || action == nil {
		return err
	}

	action.Status = types.ActionStatusRejected
	action.UpdatedAt = w.now()
	if err := w.presenter.UpdateStatus(ctx, action, msgCanceled); err != nil {
		_ = errutil.Handle(ctx, err, "failed to update approval status")
	}

	if err := w.actions.Put(ctx, action); err != nil {
		return goerr.Wrap(err, "failed to store action", goerr.V(ActionIDKey, action.ID))
	}
	return nil
}

func (w *ApprovalWorkflow) handleContextSubmitted(ctx context.Context, e model.ContextSubmitted) error {
	action, err := w.loadPending(ctx, e.ActionID, e.UserID)
	if err != nil || action == nil || action.Draft == nil {
		return err
	}

	draft := action.Draft
	note := strings.TrimSpace(e.Context)
	if note != "" {
		draft.ExtraContext = note
	}

	raw, err := w.nlu.Generate(ctx, draft.CorrectionPrompt(note), types.NLUModeNotificationCorrection)
	if err != nil {
		logging.From(ctx).Warn("Correction failed, keeping draft", slog.Any("error", err))
	} else if payload, err := model.ParseNotificationPayload(raw); err != nil {
		logging.From(ctx).Warn("Correction output unparsable, keeping draft", slog.Any("error", err))
	} else {
		draft.Content = payload.Content
		draft.Time = payload.Time
	}

	if err := w.presenter.Prompt(ctx, action); err != nil {
		logging.From(ctx).Warn("Failed to refresh approval prompt", slog.Any("error", err))
	}
	action.UpdatedAt = w.now()

	if err := w.actions.Put(ctx, action); err != nil {
		return goerr.Wrap(err, "failed to store action", goerr.V(ActionIDKey, action.ID))
	}
	return nil
}

func (w *ApprovalWorkflow) reportFailure(ctx context.Context, channelID, userID, msg string) {
	if err := w.presenter.UpdateStatusMessage(ctx, channelID, userID, msg); err != nil {
		_ = errutil.Handle(ctx, err, "failed to report workflow failure")
	}
}
