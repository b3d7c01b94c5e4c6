package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	slacksvc "github.com/secmon-lab/kairos/pkg/service/slack"
	"github.com/secmon-lab/kairos/pkg/utils/errutil"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
	"github.com/slack-go/slack"
)

const (
	msgApprovalExpired = "This notification request has expired. Run /notify again."
	msgContextReceived = "Thanks! Updating your notification preview."
)

// HandleInteraction handles button clicks on approval prompts and the
// context modal submission.
func (h *SlackHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Slack sends interaction payloads as application/x-www-form-urlencoded
	// with a "payload" field containing JSON
	payload := r.FormValue("payload")
	if payload == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("missing payload field in interaction request"), http.StatusBadRequest)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse interaction payload"), http.StatusBadRequest)
		return
	}

	switch callback.Type {
	case slack.InteractionTypeBlockActions:
		for _, action := range callback.ActionCallback.BlockActions {
			if err := h.handleBlockAction(ctx, &callback, action); err != nil {
				_ = errutil.Handle(ctx, err, "failed to handle slack interaction")
			}
		}

	case slack.InteractionTypeViewSubmission:
		if err := h.handleViewSubmission(ctx, &callback); err != nil {
			_ = errutil.Handle(ctx, err, "failed to handle view submission")
		}
	}

	// An empty 200 also closes a submitted modal
	w.WriteHeader(http.StatusOK)
}

func (h *SlackHandler) handleBlockAction(ctx context.Context, callback *slack.InteractionCallback, blockAction *slack.BlockAction) error {
	switch blockAction.ActionID {
	case slacksvc.ActionIDConfirm, slacksvc.ActionIDCancel, slacksvc.ActionIDAddContext:
	default:
		return nil
	}

	actionID := model.ActionID(blockAction.Value)
	userID := callback.User.ID

	action, err := h.uc.Workflow.GetAction(ctx, actionID)
	if err != nil {
		return err
	}
	if action == nil {
		logging.From(ctx).Warn("interaction for unknown action", "action_id", actionID, "user_id", userID)
		return nil
	}

	if action.IsExpired(h.now()) {
		if err := h.svc.PostEphemeral(ctx, callback.Channel.ID, userID, msgApprovalExpired); err != nil {
			return goerr.Wrap(err, "failed to report expired action", goerr.V("action_id", actionID))
		}
		return nil
	}

	switch blockAction.ActionID {
	case slacksvc.ActionIDConfirm:
		return h.uc.Notify.Confirm(ctx, actionID, userID)
	case slacksvc.ActionIDCancel:
		return h.uc.Notify.Cancel(ctx, actionID, userID)
	default:
		if err := h.svc.OpenView(ctx, callback.TriggerID, slacksvc.BuildContextModal(actionID)); err != nil {
			return goerr.Wrap(err, "failed to open context modal", goerr.V("action_id", actionID))
		}
		return nil
	}
}

func (h *SlackHandler) handleViewSubmission(ctx context.Context, callback *slack.InteractionCallback) error {
	if callback.View.CallbackID != slacksvc.ContextModalCallbackID {
		return nil
	}

	actionID := model.ActionID(callback.View.PrivateMetadata)
	userID := callback.User.ID

	var note string
	if callback.View.State != nil {
		note = callback.View.State.Values[slacksvc.ContextInputBlockID][slacksvc.ContextInputActionID].Value
	}

	if err := h.uc.Notify.SubmitContext(ctx, actionID, userID, note); err != nil {
		return err
	}

	action, err := h.uc.Workflow.GetAction(ctx, actionID)
	if err != nil || action == nil {
		return err
	}
	if err := h.svc.PostEphemeral(ctx, action.ChannelID, userID, msgContextReceived); err != nil {
		return goerr.Wrap(err, "failed to acknowledge context", goerr.V("action_id", actionID))
	}
	return nil
}
