package types

import "fmt"

// ActionStatus represents the approval state of an action
type ActionStatus string

const (
	ActionStatusAwaitingApproval ActionStatus = "AWAITING_APPROVAL"
	ActionStatusApproved         ActionStatus = "APPROVED"
	ActionStatusRejected         ActionStatus = "REJECTED"
	ActionStatusCompleted        ActionStatus = "COMPLETED"
	ActionStatusFailed           ActionStatus = "FAILED"
)

// AllActionStatuses returns all valid action statuses
func AllActionStatuses() []ActionStatus {
	return []ActionStatus{
		ActionStatusAwaitingApproval,
		ActionStatusApproved,
		ActionStatusRejected,
		ActionStatusCompleted,
		ActionStatusFailed,
	}
}

// IsValid checks if the action status is valid
func (s ActionStatus) IsValid() bool {
	switch s {
	case ActionStatusAwaitingApproval,
		ActionStatusApproved,
		ActionStatusRejected,
		ActionStatusCompleted,
		ActionStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible.
// APPROVED is a staging status and is not terminal.
func (s ActionStatus) IsTerminal() bool {
	switch s {
	case ActionStatusRejected, ActionStatusCompleted, ActionStatusFailed:
		return true
	default:
		return false
	}
}

// Emoji returns the emoji shown next to the status in Slack
func (s ActionStatus) Emoji() string {
	switch s {
	case ActionStatusAwaitingApproval:
		return "⏳"
	case ActionStatusApproved:
		return "👍"
	case ActionStatusRejected:
		return "🚫"
	case ActionStatusCompleted:
		return "✅"
	case ActionStatusFailed:
		return "⚠️"
	default:
		return "❓"
	}
}

// String returns the string representation of the action status
func (s ActionStatus) String() string {
	return string(s)
}

// ParseActionStatus parses a string into an ActionStatus
func ParseActionStatus(s string) (ActionStatus, error) {
	status := ActionStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid action status: %s", s)
	}
	return status, nil
}
