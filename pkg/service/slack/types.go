package slack

import (
	"context"

	"github.com/slack-go/slack"
)

// Service provides interface to Slack API for the bot
type Service interface {
	// PostMessage posts a Block Kit message to a channel and returns the message timestamp.
	// The text parameter is used as a fallback for notifications.
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error)

	// UpdateMessage updates an existing Block Kit message identified by channel and timestamp.
	UpdateMessage(ctx context.Context, channelID string, timestamp string, blocks []slack.Block, text string) error

	// PostEphemeral posts a message only userID can see
	PostEphemeral(ctx context.Context, channelID, userID, text string) error

	// OpenView opens a modal in response to an interaction
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error

	// SendMessage posts plain text to a channel
	SendMessage(ctx context.Context, channelID, content string) error

	// SendDirectMessage opens (or reuses) the DM with userID and posts plain text there
	SendDirectMessage(ctx context.Context, userID, content string) error
}
