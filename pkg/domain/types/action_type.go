package types

import "fmt"

// ActionType is the kind of side effect an approved action performs
type ActionType string

const (
	ActionTypeCreateNotification ActionType = "CREATE_NOTIFICATION"
)

func (t ActionType) IsValid() bool {
	return t == ActionTypeCreateNotification
}

func (t ActionType) String() string {
	return string(t)
}

// ParseActionType parses a string into an ActionType
func ParseActionType(s string) (ActionType, error) {
	t := ActionType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid action type: %s", s)
	}
	return t, nil
}
