package model

// Event is a message carried on the event bus
type Event interface {
	EventName() string
}

// NotifyRequested asks the workflow to draft a notification from text
type NotifyRequested struct {
	Text      string
	UserID    string
	ChannelID string
}

// ApprovalConfirmed is the user's confirmation of a drafted action
type ApprovalConfirmed struct {
	ActionID ActionID
	UserID   string
}

// ApprovalCanceled is the user's rejection of a drafted action
type ApprovalCanceled struct {
	ActionID ActionID
	UserID   string
}

// ContextSubmitted carries a correction note for a drafted action
type ContextSubmitted struct {
	ActionID ActionID
	UserID   string
	Context  string
}

func (NotifyRequested) EventName() string   { return "notify_requested" }
func (ApprovalConfirmed) EventName() string { return "approval_confirmed" }
func (ApprovalCanceled) EventName() string  { return "approval_canceled" }
func (ContextSubmitted) EventName() string  { return "context_submitted" }
