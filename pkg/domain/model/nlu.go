package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/types"
)

// NotificationPayload is the structured output of the notification modes
type NotificationPayload struct {
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// ParseNotificationPayload decodes a model response into a payload. The
// time must be RFC 3339.
func ParseNotificationPayload(raw string) (*NotificationPayload, error) {
	var p NotificationPayload
	if err := json.Unmarshal([]byte(trimCodeFence(raw)), &p); err != nil {
		return nil, goerr.Wrap(err, "invalid notification payload", goerr.V("raw", raw))
	}
	if strings.TrimSpace(p.Content) == "" {
		return nil, goerr.New("notification payload has no content", goerr.V("raw", raw))
	}
	if p.Time.IsZero() {
		return nil, goerr.New("notification payload has no time", goerr.V("raw", raw))
	}
	return &p, nil
}

type intentPayload struct {
	Intent         string `json:"intent"`
	NormalizedText string `json:"normalized_text"`
}

// ParseIntentResult decodes an intent router response. fallbackText is
// used when the model omits normalized_text.
func ParseIntentResult(raw, fallbackText string) (*IntentResult, error) {
	var p intentPayload
	if err := json.Unmarshal([]byte(trimCodeFence(raw)), &p); err != nil {
		return nil, goerr.Wrap(err, "invalid intent payload", goerr.V("raw", raw))
	}
	text := strings.TrimSpace(p.NormalizedText)
	if text == "" {
		text = fallbackText
	}
	return &IntentResult{
		Intent:         types.ParseIntent(p.Intent),
		NormalizedText: text,
	}, nil
}

// FormatTime renders t the way user facing messages show times
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

func trimCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
