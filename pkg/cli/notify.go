package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/kairos/pkg/cli/config"
	"github.com/secmon-lab/kairos/pkg/service/nlu"
	"github.com/secmon-lab/kairos/pkg/usecase"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Layouts accepted by --at besides RFC 3339. They are read in the
// configured timezone.
var localTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

func cmdNotify() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Manage scheduled notifications without the Slack approval flow",
		Commands: []*cli.Command{
			cmdNotifyCreate(),
			cmdNotifyPrompt(),
			cmdNotifyList(),
		},
	}
}

func cmdNotifyCreate() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var content, recipients, at, channel string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "content",
			Usage:       "Reminder text",
			Required:    true,
			Destination: &content,
		},
		&cli.StringFlag{
			Name:        "notify",
			Usage:       "Comma separated Slack user IDs to remind (defaults to notify.default_user)",
			Destination: &recipients,
		},
		&cli.StringFlag{
			Name:        "at",
			Usage:       "Target time, RFC 3339 or \"2006-01-02 15:04\" in the configured timezone",
			Required:    true,
			Destination: &at,
		},
		&cli.StringFlag{
			Name:        "channel",
			Usage:       "Slack channel ID to post in (defaults to notify.default_channel)",
			Destination: &channel,
		},
	}

	return &cli.Command{
		Name:  "create",
		Usage: "Persist a notification directly",
		Flags: append(append(flags, appCfg.Flags()...), repoCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			target, err := parseTargetTime(at, appCfg.Location())
			if err != nil {
				return err
			}

			uc, closer, err := notifyUseCases(ctx, &repoCfg)
			if err != nil {
				return err
			}
			defer closer()

			recipients = withDefault(recipients, appCfg.Notify.DefaultUser)
			channel = withDefault(channel, appCfg.Notify.DefaultChannel)
			if err := uc.Notification.CreateNotification(ctx, content, recipients, target, channel); err != nil {
				return goerr.Wrap(err, "failed to create notification")
			}

			logging.Default().Info("Notification created", "content", content, "target", target, "notify", recipients, "channel", channel)
			return nil
		},
	}
}

func cmdNotifyPrompt() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var text string
	var llmCfg config.LLM

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Usage:       "Free text request such as \"call mom tomorrow at 5pm\" (read from stdin when omitted)",
			Destination: &text,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)

	return &cli.Command{
		Name:  "prompt",
		Usage: "Extract a notification from free text and persist it for the default user and channel",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			if strings.TrimSpace(text) == "" {
				fmt.Fprint(c.Root().Writer, "Enter your notifications: ")
				input, err := io.ReadAll(c.Root().Reader)
				if err != nil {
					return goerr.Wrap(err, "failed to read prompt")
				}
				text = string(input)
			}

			llmClient, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM client")
			}
			if llmClient == nil {
				return goerr.Wrap(config.ErrMissingRequired, "llm-provider is required for prompt", goerr.V(config.FieldKey, "llm-provider"))
			}
			nluClient, err := nlu.New(llmClient, nlu.WithTimezone(appCfg.Notify.Timezone))
			if err != nil {
				return goerr.Wrap(err, "failed to initialize NLU client")
			}

			uc, closer, err := notifyUseCases(ctx, &repoCfg, usecase.WithNLU(nluClient))
			if err != nil {
				return err
			}
			defer closer()

			n, err := uc.Notification.CreateFromText(ctx, text, appCfg.Notify.DefaultUser, appCfg.Notify.DefaultChannel)
			if err != nil {
				return goerr.Wrap(err, "failed to create notification from prompt")
			}

			printNotification(c.Root().Writer, n.Content, n.NotificationTimes, appCfg.Location())
			return nil
		},
	}
}

func cmdNotifyList() *cli.Command {
	var appCfg config.AppConfig
	var repoCfg config.Repository
	return &cli.Command{
		Name:  "list",
		Usage: "Print stored notifications",
		Flags: append(appCfg.Flags(), repoCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			uc, closer, err := notifyUseCases(ctx, &repoCfg)
			if err != nil {
				return err
			}
			defer closer()

			notifications, err := uc.Notification.ListNotifications(ctx)
			if err != nil {
				return err
			}
			if len(notifications) == 0 {
				fmt.Fprintln(c.Root().Writer, "No notifications scheduled.")
				return nil
			}
			for _, n := range notifications {
				printNotification(c.Root().Writer, n.Content, n.NotificationTimes, appCfg.Location())
			}
			return nil
		},
	}
}

func notifyUseCases(ctx context.Context, repoCfg *config.Repository, opts ...usecase.Option) (*usecase.UseCases, func(), error) {
	repos, closer, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	return usecase.New(repos, opts...), closer, nil
}

func parseTargetTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, goerr.Wrap(config.ErrInvalidConfig, "invalid --at value", goerr.V(config.FieldKey, "at"), goerr.V(config.ValueKey, value))
}

func printNotification(w io.Writer, content string, times []time.Time, loc *time.Location) {
	if w == nil {
		w = os.Stdout
	}
	schedule := make([]string, 0, len(times))
	for _, t := range times {
		schedule = append(schedule, t.In(loc).Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(w, "%s: %s\n", content, strings.Join(schedule, ", "))
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
