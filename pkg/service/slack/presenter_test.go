package slack_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/domain/types"
	"github.com/secmon-lab/kairos/pkg/service/slack"
	goslack "github.com/slack-go/slack"
)

type postedMessage struct {
	channelID string
	timestamp string
	blocks    []goslack.Block
	text      string
}

type mockService struct {
	posted   []postedMessage
	updated  []postedMessage
	sent     []postedMessage
	dms      []postedMessage
	postErr  error
	nextTS   string
	openedVs []goslack.ModalViewRequest
}

func (m *mockService) PostMessage(ctx context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	if m.postErr != nil {
		return "", m.postErr
	}
	m.posted = append(m.posted, postedMessage{channelID: channelID, blocks: blocks, text: text})
	return m.nextTS, nil
}

func (m *mockService) UpdateMessage(ctx context.Context, channelID, timestamp string, blocks []goslack.Block, text string) error {
	m.updated = append(m.updated, postedMessage{channelID: channelID, timestamp: timestamp, blocks: blocks, text: text})
	return nil
}

func (m *mockService) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	return nil
}

func (m *mockService) OpenView(ctx context.Context, triggerID string, view goslack.ModalViewRequest) error {
	m.openedVs = append(m.openedVs, view)
	return nil
}

func (m *mockService) SendMessage(ctx context.Context, channelID, content string) error {
	m.sent = append(m.sent, postedMessage{channelID: channelID, text: content})
	return nil
}

func (m *mockService) SendDirectMessage(ctx context.Context, userID, content string) error {
	m.dms = append(m.dms, postedMessage{channelID: userID, text: content})
	return nil
}

func newTestAction() *model.Action {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	return model.NewNotificationAction("U123", "C456", &model.NotificationDraft{
		Content:      "call mom",
		Time:         time.Date(2026, 6, 2, 21, 0, 0, 0, time.UTC),
		OriginalText: "call mom tomorrow at 5",
		ExpiresAt:    now.Add(model.ApprovalWindow),
	}, now)
}

func findButtons(t *testing.T, blocks []goslack.Block) []*goslack.ButtonBlockElement {
	t.Helper()
	for _, b := range blocks {
		ab, ok := b.(*goslack.ActionBlock)
		if !ok {
			continue
		}
		var buttons []*goslack.ButtonBlockElement
		for _, el := range ab.Elements.ElementSet {
			if btn, ok := el.(*goslack.ButtonBlockElement); ok {
				buttons = append(buttons, btn)
			}
		}
		return buttons
	}
	return nil
}

func TestPresenterPrompt(t *testing.T) {
	ctx := context.Background()

	t.Run("posts prompt and records message id", func(t *testing.T) {
		svc := &mockService{nextTS: "1700000000.000100"}
		p := slack.NewPresenter(svc)
		action := newTestAction()

		gt.NoError(t, p.Prompt(ctx, action)).Required()
		gt.Array(t, svc.posted).Length(1).Required()
		gt.Value(t, svc.posted[0].channelID).Equal("C456")
		gt.String(t, svc.posted[0].text).Contains("call mom")
		gt.Value(t, action.Draft.MessageID).Equal("1700000000.000100")

		buttons := findButtons(t, svc.posted[0].blocks)
		gt.Array(t, buttons).Length(3).Required()
		gt.Value(t, buttons[0].ActionID).Equal(slack.ActionIDConfirm)
		gt.Value(t, buttons[1].ActionID).Equal(slack.ActionIDCancel)
		gt.Value(t, buttons[2].ActionID).Equal(slack.ActionIDAddContext)
		for _, b := range buttons {
			gt.Value(t, b.Value).Equal(action.ID.String())
		}
	})

	t.Run("re-prompt updates the existing message", func(t *testing.T) {
		svc := &mockService{}
		p := slack.NewPresenter(svc)
		action := newTestAction()
		action.Draft.MessageID = "1700000000.000200"
		action.Draft.ExtraContext = "make it saturday"

		gt.NoError(t, p.Prompt(ctx, action)).Required()
		gt.Array(t, svc.posted).Length(0)
		gt.Array(t, svc.updated).Length(1).Required()
		gt.Value(t, svc.updated[0].timestamp).Equal("1700000000.000200")
	})

	t.Run("post failure is returned", func(t *testing.T) {
		svc := &mockService{postErr: errors.New("channel_not_found")}
		p := slack.NewPresenter(svc)
		action := newTestAction()

		gt.Error(t, p.Prompt(ctx, action))
		gt.Value(t, action.Draft.MessageID).Equal("")
	})

	t.Run("action without draft is rejected", func(t *testing.T) {
		p := slack.NewPresenter(&mockService{})
		gt.Error(t, p.Prompt(ctx, &model.Action{ID: model.NewActionID()}))
	})
}

func TestPresenterUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces the prompt without buttons", func(t *testing.T) {
		svc := &mockService{}
		p := slack.NewPresenter(svc)
		action := newTestAction()
		action.Draft.MessageID = "1700000000.000300"
		action.Status = types.ActionStatusCompleted

		gt.NoError(t, p.UpdateStatus(ctx, action, "Canceled notification request.")).Required()
		gt.Array(t, svc.updated).Length(1).Required()
		gt.Value(t, svc.updated[0].text).Equal("Canceled notification request.")
		gt.Array(t, findButtons(t, svc.updated[0].blocks)).Length(0)
	})

	t.Run("falls back to a channel message without a prompt", func(t *testing.T) {
		svc := &mockService{}
		p := slack.NewPresenter(svc)
		action := newTestAction()

		gt.NoError(t, p.UpdateStatus(ctx, action, "Failed to persist notification.")).Required()
		gt.Array(t, svc.sent).Length(1).Required()
		gt.Value(t, svc.sent[0].text).Equal("<@U123> Failed to persist notification.")
	})
}

func TestPresenterUpdateStatusMessage(t *testing.T) {
	svc := &mockService{}
	p := slack.NewPresenter(svc)

	gt.NoError(t, p.UpdateStatusMessage(context.Background(), "C1", "U1", "Failed to parse notification JSON: x")).Required()
	gt.Array(t, svc.sent).Length(1).Required()
	gt.Value(t, svc.sent[0].channelID).Equal("C1")
	gt.True(t, strings.HasPrefix(svc.sent[0].text, "<@U1> "))
}

func TestBuildContextModal(t *testing.T) {
	id := model.NewActionID()
	view := slack.BuildContextModal(id)

	gt.Value(t, view.CallbackID).Equal(slack.ContextModalCallbackID)
	gt.Value(t, view.PrivateMetadata).Equal(id.String())
	gt.Array(t, view.Blocks.BlockSet).Length(1).Required()

	input, ok := view.Blocks.BlockSet[0].(*goslack.InputBlock)
	gt.True(t, ok)
	gt.Value(t, input.BlockID).Equal(slack.ContextInputBlockID)
}

func TestTruncateText(t *testing.T) {
	gt.Value(t, slack.TruncateText("short", 10)).Equal("short")
	gt.Value(t, slack.TruncateText("abcdefghij", 5)).Equal("abcd…")
	gt.Value(t, slack.TruncateText("こんにちは世界", 4)).Equal("こんに…")
	gt.Value(t, slack.TruncateText("abc", 0)).Equal("")

	long := strings.Repeat("x", slack.MaxHeaderChars+20)
	gt.Value(t, len([]rune(slack.TruncateText(long, slack.MaxHeaderChars)))).Equal(slack.MaxHeaderChars)
}
