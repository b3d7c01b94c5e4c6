package slack

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Block Kit identifiers shared with the interaction handler
const (
	ActionIDConfirm    = "kairos_confirm"
	ActionIDCancel     = "kairos_cancel"
	ActionIDAddContext = "kairos_add_context"

	approvalBlockID = "kairos_approval_buttons"

	ContextModalCallbackID = "kairos_context_modal"
	ContextInputBlockID    = "kairos_context_block"
	ContextInputActionID   = "kairos_context_input"
)

// Presenter renders approval prompts as interactive Slack messages
type Presenter struct {
	svc Service
}

var (
	_ interfaces.ApprovalPresenter = &Presenter{}
	_ interfaces.Messenger         = &Presenter{}
)

func NewPresenter(svc Service) *Presenter {
	return &Presenter{svc: svc}
}

// Prompt posts the approval message, or replaces it when the action was
// already rendered, and records the message timestamp on the draft.
func (p *Presenter) Prompt(ctx context.Context, action *model.Action) error {
	if action.Draft == nil {
		return goerr.New("action has no draft", goerr.V("action_id", action.ID))
	}

	blocks := BuildApprovalBlocks(action)
	fallback := fmt.Sprintf("Confirm notification: %s at %s", action.Draft.Content, model.FormatTime(action.Draft.Time))

	if action.Draft.MessageID != "" {
		if err := p.svc.UpdateMessage(ctx, action.ChannelID, action.Draft.MessageID, blocks, fallback); err != nil {
			return goerr.Wrap(err, "failed to refresh approval prompt", goerr.V("action_id", action.ID))
		}
		return nil
	}

	ts, err := p.svc.PostMessage(ctx, action.ChannelID, blocks, fallback)
	if err != nil {
		return goerr.Wrap(err, "failed to post approval prompt", goerr.V("action_id", action.ID))
	}
	action.Draft.MessageID = ts
	return nil
}

// UpdateStatus replaces the approval prompt with msg, removing the buttons.
// Without a rendered prompt the status goes out as a new message.
func (p *Presenter) UpdateStatus(ctx context.Context, action *model.Action, msg string) error {
	if action.Draft == nil || action.Draft.MessageID == "" {
		return p.UpdateStatusMessage(ctx, action.ChannelID, action.UserID, msg)
	}

	blocks := BuildStatusBlocks(action, msg)
	if err := p.svc.UpdateMessage(ctx, action.ChannelID, action.Draft.MessageID, blocks, msg); err != nil {
		return goerr.Wrap(err, "failed to update approval prompt", goerr.V("action_id", action.ID))
	}
	return nil
}

// UpdateStatusMessage posts msg to the channel addressed to userID
func (p *Presenter) UpdateStatusMessage(ctx context.Context, channelID, userID, msg string) error {
	text := msg
	if userID != "" {
		text = fmt.Sprintf("<@%s> %s", userID, msg)
	}
	return p.svc.SendMessage(ctx, channelID, text)
}

func (p *Presenter) SendMessage(ctx context.Context, channelID, content string) error {
	return p.svc.SendMessage(ctx, channelID, content)
}

func (p *Presenter) SendDirectMessage(ctx context.Context, userID, content string) error {
	return p.svc.SendDirectMessage(ctx, userID, content)
}

// BuildApprovalBlocks constructs the prompt asking the owner to confirm a draft
func BuildApprovalBlocks(action *model.Action) []slack.Block {
	draft := action.Draft

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, action.Status.Emoji()+" Confirm notification", true, false),
		),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, "*What*\n"+truncateText(draft.Content, maxSectionLength/2-16), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, "*When*\n"+model.FormatTime(draft.Time), false, false),
		}, nil),
	}

	if draft.ExtraContext != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Correction note*\n"+truncateText(draft.ExtraContext, maxSectionLength-32), false, false),
			nil, nil,
		))
	}

	contextText := fmt.Sprintf("Requested by <@%s>: %s", action.UserID, truncateText(draft.OriginalText, 200))
	if !draft.ExpiresAt.IsZero() {
		contextText += fmt.Sprintf(" | expires <!date^%d^{time}|%s>", draft.ExpiresAt.Unix(), model.FormatTime(draft.ExpiresAt))
	}
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, contextText, false, false),
	))

	value := action.ID.String()
	confirm := slack.NewButtonBlockElement(ActionIDConfirm, value,
		slack.NewTextBlockObject(slack.PlainTextType, "Confirm", true, false),
	)
	confirm.Style = slack.StylePrimary

	cancel := slack.NewButtonBlockElement(ActionIDCancel, value,
		slack.NewTextBlockObject(slack.PlainTextType, "Cancel", true, false),
	)
	cancel.Style = slack.StyleDanger

	addContext := slack.NewButtonBlockElement(ActionIDAddContext, value,
		slack.NewTextBlockObject(slack.PlainTextType, "Add context", true, false),
	)

	blocks = append(blocks, slack.NewActionBlock(approvalBlockID, confirm, cancel, addContext))
	return blocks
}

// BuildStatusBlocks constructs the resolved form of an approval prompt
func BuildStatusBlocks(action *model.Action, msg string) []slack.Block {
	header := action.Status.Emoji() + " Notification request"
	return []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, truncateText(header, maxHeaderLength), true, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, truncateText(msg, maxSectionLength), false, false),
			nil, nil,
		),
	}
}

// BuildContextModal constructs the modal collecting a correction note.
// The action id travels in private metadata.
func BuildContextModal(actionID model.ActionID) slack.ModalViewRequest {
	input := slack.NewPlainTextInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, "Add any details or corrections (optional)", false, false),
		ContextInputActionID,
	)
	input.Multiline = true

	return slack.ModalViewRequest{
		Type:            slack.VTModal,
		CallbackID:      ContextModalCallbackID,
		PrivateMetadata: actionID.String(),
		Title:           slack.NewTextBlockObject(slack.PlainTextType, "Add context", false, false),
		Submit:          slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Close:           slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				slack.NewInputBlock(ContextInputBlockID,
					slack.NewTextBlockObject(slack.PlainTextType, "Correction note", false, false),
					nil,
					input,
				),
			},
		},
	}
}
