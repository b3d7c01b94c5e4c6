package slack_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/service/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	if token == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN is not set")
	}
	channelID := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if channelID == "" {
		t.Skip("TEST_SLACK_CHANNEL_ID is not set")
	}

	ctx := context.Background()
	svc, err := slack.New(token)
	gt.NoError(t, err).Required()

	t.Run("SendMessage posts plain text", func(t *testing.T) {
		gt.NoError(t, svc.SendMessage(ctx, channelID, "kairos integration test"))
	})

	t.Run("PostMessage then UpdateMessage", func(t *testing.T) {
		blocks := slack.BuildStatusBlocks(newTestAction(), "integration test")
		ts, err := svc.PostMessage(ctx, channelID, blocks, "integration test")
		gt.NoError(t, err).Required()
		gt.String(t, ts).NotEqual("")

		gt.NoError(t, svc.UpdateMessage(ctx, channelID, ts, blocks, "integration test (updated)"))
	})
}
