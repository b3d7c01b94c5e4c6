package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/cli/config"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
)

func TestSlackConfigure(t *testing.T) {
	t.Run("returns nil service without bot token", func(t *testing.T) {
		cfg := config.NewSlackForTest("", "")
		svc, err := cfg.Configure()
		gt.NoError(t, err)
		gt.Value(t, svc).Nil()
		gt.False(t, cfg.IsWebhookConfigured())
	})

	t.Run("webhook is configured by signing secret", func(t *testing.T) {
		cfg := config.NewSlackForTest("xoxb-test", "secret")
		gt.True(t, cfg.IsWebhookConfigured())
		gt.Value(t, cfg.SigningSecret()).Equal("secret")
	})
}

func TestLLMConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil client without provider", func(t *testing.T) {
		client, err := config.NewLLMForTest("", "", "").Configure(ctx)
		gt.NoError(t, err)
		gt.Value(t, client).Nil()
	})

	t.Run("gemini requires a project", func(t *testing.T) {
		_, err := config.NewLLMForTest(config.ProviderGemini, "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("openai requires an api key", func(t *testing.T) {
		_, err := config.NewLLMForTest(config.ProviderOpenAI, "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := config.NewLLMForTest("claude-on-a-toaster", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidProvider)
	})

	t.Run("returns flags", func(t *testing.T) {
		gt.Array(t, config.NewLLMForTest("", "", "").Flags()).Length(5)
	})
}

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		repos, closer, err := config.NewRepositoryForTest(config.BackendMemory, "").Configure(ctx)
		gt.NoError(t, err).Required()
		defer closer()
		gt.Value(t, repos.Actions).NotNil()
		gt.Value(t, repos.Sessions).NotNil()
		gt.Value(t, repos.Notifications).NotNil()
		gt.Value(t, repos.Todos).NotNil()
	})

	t.Run("file backend", func(t *testing.T) {
		repos, closer, err := config.NewRepositoryForTest(config.BackendFile, t.TempDir()).Configure(ctx)
		gt.NoError(t, err).Required()
		defer closer()

		list, err := repos.Notifications.List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(0)
	})

	t.Run("file backend requires a location", func(t *testing.T) {
		_, _, err := config.NewRepositoryForTest(config.BackendFile, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("firestore requires a project", func(t *testing.T) {
		_, _, err := config.NewRepositoryForTest(config.BackendFirestore, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("gcs requires a bucket", func(t *testing.T) {
		_, _, err := config.NewRepositoryForTest(config.BackendGCS, "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, _, err := config.NewRepositoryForTest("postgres", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidBackend)
	})
}

func TestLoggerConfigure(t *testing.T) {
	orig := logging.Default()
	t.Cleanup(func() { logging.SetDefault(orig) })

	t.Run("writes to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kairos.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("loud", "console", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
