package slack

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// client implements Service interface
type client struct {
	api     *slack.Client
	apiOpts []slack.Option
}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPIURL points the client at another Slack API endpoint
func WithAPIURL(url string) Option {
	return func(c *client) {
		c.apiOpts = append(c.apiOpts, slack.OptionAPIURL(url))
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{}
	for _, opt := range opts {
		opt(c)
	}
	c.api = slack.New(token, c.apiOpts...)

	return c, nil
}

func (c *client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, text string) (string, error) {
	_, ts, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return ts, nil
}

func (c *client) UpdateMessage(ctx context.Context, channelID string, timestamp string, blocks []slack.Block, text string) error {
	_, _, _, err := c.api.UpdateMessageContext(ctx, channelID, timestamp,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to update message",
			goerr.V("channel_id", channelID),
			goerr.V("timestamp", timestamp))
	}
	return nil
}

func (c *client) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	_, err := c.api.PostEphemeralContext(ctx, channelID, userID,
		slack.MsgOptionText(truncateText(text, maxMessageLength), false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post ephemeral message",
			goerr.V("channel_id", channelID),
			goerr.V("user_id", userID))
	}
	return nil
}

func (c *client) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := c.api.OpenViewContext(ctx, triggerID, view); err != nil {
		return goerr.Wrap(err, "failed to open view", goerr.V("callback_id", view.CallbackID))
	}
	return nil
}

func (c *client) SendMessage(ctx context.Context, channelID, content string) error {
	_, _, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(truncateText(content, maxMessageLength), false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to send message", goerr.V("channel_id", channelID))
	}
	return nil
}

func (c *client) SendDirectMessage(ctx context.Context, userID, content string) error {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to open direct message", goerr.V("user_id", userID))
	}
	return c.SendMessage(ctx, channel.ID, content)
}
