package types

// SessionState is the clarification state of a pending session
type SessionState string

const (
	SessionStateUnknown             SessionState = "unknown"
	SessionStatePendingNotification SessionState = "pending_notification"
)

func (s SessionState) String() string {
	return string(s)
}
