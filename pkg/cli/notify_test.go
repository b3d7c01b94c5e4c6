package cli_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/cli"
	"github.com/secmon-lab/kairos/pkg/cli/config"
	"github.com/secmon-lab/kairos/pkg/domain/model"
)

func loadNotifications(t *testing.T, dir string) map[string]*model.Notification {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "notifications.json"))
	gt.NoError(t, err).Required()

	var entries map[string]*model.Notification
	gt.NoError(t, json.Unmarshal(data, &entries)).Required()
	return entries
}

func TestRun_NotifyCreate(t *testing.T) {
	dir := t.TempDir()
	target := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Minute)

	err := cli.Run(context.Background(), []string{
		"kairos", "notify", "create",
		"--content", "call mom",
		"--notify", "U1,U2",
		"--at", target.Format(time.RFC3339),
		"--channel", "C1",
		"--repository-backend", "file",
		"--data-url", dir,
	}, "test")
	gt.NoError(t, err).Required()

	entries := loadNotifications(t, dir)
	gt.Number(t, len(entries)).Equal(1)
	for _, n := range entries {
		gt.Value(t, n.Content).Equal("call mom")
		gt.Value(t, n.Notify).Equal([]string{"U1", "U2"})
		gt.Value(t, n.Channel).Equal("C1")
		gt.Array(t, n.NotificationTimes).Length(2).Required()
		gt.True(t, n.NotificationTimes[0].Equal(target.Add(-24*time.Hour)))
		gt.True(t, n.NotificationTimes[1].Equal(target.Add(-time.Hour)))
	}

	err = cli.Run(context.Background(), []string{
		"kairos", "notify", "list",
		"--repository-backend", "file",
		"--data-url", dir,
	}, "test")
	gt.NoError(t, err)
}

func TestRun_NotifyCreateUsesConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "kairos.toml")
	content := `
[notify]
default_user = "U9"
default_channel = "C9"
timezone = "Asia/Tokyo"
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	at := time.Now().In(time.FixedZone("JST", 9*3600)).Add(48 * time.Hour).Format("2006-01-02 15:04")

	err := cli.Run(context.Background(), []string{
		"kairos", "notify", "create",
		"--content", "renew passport",
		"--at", at,
		"--config", configPath,
		"--repository-backend", "file",
		"--data-url", dir,
	}, "test")
	gt.NoError(t, err).Required()

	for _, n := range loadNotifications(t, dir) {
		gt.Value(t, n.Notify).Equal([]string{"U9"})
		gt.Value(t, n.Channel).Equal("C9")
	}
}

func TestRun_NotifyCreateInvalidTime(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"kairos", "notify", "create",
		"--content", "call mom",
		"--notify", "U1",
		"--at", "tomorrow-ish",
		"--repository-backend", "memory",
	}, "test")
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}

func TestRun_NotifyPromptRequiresLLM(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"kairos", "notify", "prompt",
		"--text", "call mom tomorrow at 5pm",
		"--repository-backend", "memory",
	}, "test")
	gt.Error(t, err).Is(config.ErrMissingRequired)
}

func TestRun_ServeRequiresSlack(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"kairos", "serve",
		"--repository-backend", "memory",
	}, "test")
	gt.Error(t, err).Is(config.ErrMissingRequired)
}

func TestParseTargetTime(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	gt.NoError(t, err).Required()

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "RFC 3339",
			value: "2026-08-03T17:00:00Z",
			want:  time.Date(2026, 8, 3, 17, 0, 0, 0, time.UTC),
		},
		{
			name:  "RFC 3339 with offset",
			value: "2026-08-03T17:00:00+09:00",
			want:  time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "local layout in configured zone",
			value: "2026-08-03 17:00",
			want:  time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			value:   "next week",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cli.ParseTargetTime(tt.value, tokyo)
			if tt.wantErr {
				gt.Error(t, err).Is(config.ErrInvalidConfig)
				return
			}
			gt.NoError(t, err).Required()
			gt.True(t, got.Equal(tt.want))
		})
	}
}
