package slack

import (
	"regexp"
	"strings"

	"github.com/slack-go/slack/slackevents"
)

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// Message is an inbound Slack message addressed to the bot
type Message struct {
	id        string
	channelID string
	threadTS  string
	userID    string
	text      string
	direct    bool
}

// NewMessage extracts a Message from an Events API callback. It returns
// nil for events the bot should not answer: unsupported types, bot
// authored messages, edits and channel messages that do not mention it.
func NewMessage(ev *slackevents.EventsAPIEvent) *Message {
	if ev.Type != slackevents.CallbackEvent {
		return nil
	}

	switch evt := ev.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		if evt.BotID != "" {
			return nil
		}
		return &Message{
			id:        evt.TimeStamp,
			channelID: evt.Channel,
			threadTS:  evt.ThreadTimeStamp,
			userID:    evt.User,
			text:      StripMentions(evt.Text),
		}

	case *slackevents.MessageEvent:
		if evt.ChannelType != "im" || evt.BotID != "" || evt.SubType != "" {
			return nil
		}
		threadTS := ""
		if evt.ThreadTimeStamp != "" && evt.ThreadTimeStamp != evt.TimeStamp {
			threadTS = evt.ThreadTimeStamp
		}
		return &Message{
			id:        evt.TimeStamp,
			channelID: evt.Channel,
			threadTS:  threadTS,
			userID:    evt.User,
			text:      StripMentions(evt.Text),
			direct:    true,
		}

	default:
		return nil
	}
}

// StripMentions removes user mention markup and surrounding whitespace
func StripMentions(text string) string {
	return strings.Join(strings.Fields(mentionPattern.ReplaceAllString(text, " ")), " ")
}

func (m *Message) ID() string {
	return m.id
}

func (m *Message) ChannelID() string {
	return m.channelID
}

func (m *Message) ThreadTS() string {
	return m.threadTS
}

func (m *Message) UserID() string {
	return m.userID
}

func (m *Message) Text() string {
	return m.text
}

// IsDirect reports whether the message came from a direct message channel
func (m *Message) IsDirect() bool {
	return m.direct
}
