package types

import "strings"

// Intent is the classification result of a free-text request
type Intent string

const (
	IntentNotification Intent = "notification"
	IntentTodoList     Intent = "todolist"
	IntentUnknown      Intent = "unknown"
)

// ParseIntent maps a classifier label to an Intent. Unrecognized labels
// become IntentUnknown.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentNotification:
		return IntentNotification
	case IntentTodoList:
		return IntentTodoList
	default:
		return IntentUnknown
	}
}

func (i Intent) String() string {
	return string(i)
}
