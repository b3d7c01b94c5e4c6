package nlu

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/types"
)

// DefaultTimezone is the user timezone assumed by the prompts
const DefaultTimezone = "America/New_York"

var (
	//go:embed prompt/notification.md
	notificationPromptTmpl string
	//go:embed prompt/notification_correction.md
	notificationCorrectionPromptTmpl string
	//go:embed prompt/notification_message.md
	notificationMessagePromptTmpl string
	//go:embed prompt/intent_router.md
	intentRouterPromptTmpl string
)

var prompts = map[types.NLUMode]*template.Template{
	types.NLUModeNotification:           template.Must(template.New("notification").Parse(notificationPromptTmpl)),
	types.NLUModeNotificationCorrection: template.Must(template.New("notification_correction").Parse(notificationCorrectionPromptTmpl)),
	types.NLUModeNotificationMessage:    template.Must(template.New("notification_message").Parse(notificationMessagePromptTmpl)),
	types.NLUModeIntentRouter:           template.Must(template.New("intent_router").Parse(intentRouterPromptTmpl)),
}

var systemPrompts = map[types.NLUMode]string{
	types.NLUModeNotification:           "You are a strict JSON reminder extraction engine. Reply ONLY with a single JSON object. If the user gives an explicit date, keep that exact month and day and only fill in a missing year or time.",
	types.NLUModeNotificationCorrection: "You are a strict JSON reminder extraction engine. Reply ONLY with a single JSON object. If the user gives an explicit date, keep that exact month and day and only fill in a missing year or time.",
	types.NLUModeNotificationMessage:    "You are a reminder message formatter. Reply with plain text only.",
	types.NLUModeIntentRouter:           "You are a strict JSON intent router. Reply ONLY with a single JSON object.",
}

// Client implements interfaces.NLU on top of a gollem LLM client
type Client struct {
	llm      gollem.LLMClient
	timezone string
	now      func() time.Time
}

var _ interfaces.NLU = &Client{}

type Option func(*Client)

// WithTimezone sets the IANA timezone name given to the model
func WithTimezone(tz string) Option {
	return func(c *Client) {
		if tz != "" {
			c.timezone = tz
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(llm gollem.LLMClient, opts ...Option) (*Client, error) {
	if llm == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{
		llm:      llm,
		timezone: DefaultTimezone,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type promptInput struct {
	Now      string
	Timezone string
	Input    string
}

// Generate renders the prompt for mode and returns the first text of the
// model response.
func (c *Client) Generate(ctx context.Context, text string, mode types.NLUMode) (string, error) {
	tmpl, ok := prompts[mode]
	if !ok {
		return "", goerr.Wrap(ErrUnsupportedMode, "no prompt for mode", goerr.V("mode", mode))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptInput{
		Now:      c.now().UTC().Format(time.RFC3339),
		Timezone: c.timezone,
		Input:    text,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("mode", mode))
	}

	sessionOpts := []gollem.SessionOption{
		gollem.WithSessionSystemPrompt(systemPrompts[mode]),
	}
	if mode.ExpectsJSON() {
		sessionOpts = append(sessionOpts,
			gollem.WithSessionContentType(gollem.ContentTypeJSON),
			gollem.WithSessionResponseSchema(responseSchema(mode)),
		)
	}

	session, err := c.llm.NewSession(ctx, sessionOpts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session", goerr.V("mode", mode))
	}

	resp, err := session.Generate(ctx, []gollem.Input{gollem.Text(buf.String())})
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.V("mode", mode))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(ErrEmptyResponse, "LLM returned no text", goerr.V("mode", mode))
	}

	return strings.TrimSpace(strings.Join(resp.Texts, "")), nil
}

func responseSchema(mode types.NLUMode) *gollem.Parameter {
	if mode == types.NLUModeIntentRouter {
		return &gollem.Parameter{
			Title:       "IntentResult",
			Description: "Classification of a reminder bot request",
			Type:        gollem.TypeObject,
			Properties: map[string]*gollem.Parameter{
				"intent": {
					Type:        gollem.TypeString,
					Description: "notification, todolist or unknown",
					Enum:        []string{"notification", "todolist", "unknown"},
					Required:    true,
				},
				"normalized_text": {
					Type:        gollem.TypeString,
					Description: "Cleaned user text",
					Required:    true,
				},
			},
		}
	}

	return &gollem.Parameter{
		Title:       "Notification",
		Description: "Reminder content and time",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"content": {
				Type:        gollem.TypeString,
				Description: "What to remind about, without scheduling words",
				Required:    true,
			},
			"time": {
				Type:        gollem.TypeString,
				Description: "RFC3339 datetime",
				Required:    true,
			},
		},
	}
}
