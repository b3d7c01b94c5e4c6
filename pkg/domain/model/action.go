package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/kairos/pkg/domain/types"
)

// ApprovalWindow is how long a drafted action waits for the user's decision
const ApprovalWindow = 5 * time.Minute

// ActionID identifies an approval flow
type ActionID string

func NewActionID() ActionID {
	return ActionID(uuid.NewString())
}

func (id ActionID) String() string {
	return string(id)
}

// Action is a proposed side effect waiting for (or resolved by) a human decision
type Action struct {
	ID        ActionID
	Type      types.ActionType
	Status    types.ActionStatus
	UserID    string
	ChannelID string
	Draft     *NotificationDraft // nil for unsupported action types
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotificationDraft is the payload of a CREATE_NOTIFICATION action.
// OriginalText is fixed at creation; ExtraContext holds only the latest
// correction note.
type NotificationDraft struct {
	Content      string
	Time         time.Time
	OriginalText string
	ExtraContext string
	ExpiresAt    time.Time
	MessageID    string // Slack message timestamp of the rendered prompt
}

// NewNotificationAction builds an action awaiting approval for draft
func NewNotificationAction(userID, channelID string, draft *NotificationDraft, now time.Time) *Action {
	return &Action{
		ID:        NewActionID(),
		Type:      types.ActionTypeCreateNotification,
		Status:    types.ActionStatusAwaitingApproval,
		UserID:    userID,
		ChannelID: channelID,
		Draft:     draft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AcceptsDecisionFrom reports whether userID may confirm, cancel or amend
// the action in its current state.
func (a *Action) AcceptsDecisionFrom(userID string) bool {
	return a.UserID == userID && a.Status == types.ActionStatusAwaitingApproval
}

// IsExpired reports whether the approval window has passed
func (a *Action) IsExpired(now time.Time) bool {
	if a.Draft == nil || a.Draft.ExpiresAt.IsZero() {
		return false
	}
	return now.After(a.Draft.ExpiresAt)
}

func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	c := *a
	if a.Draft != nil {
		d := *a.Draft
		c.Draft = &d
	}
	return &c
}

// CorrectionPrompt returns the text sent to the language model when the
// user amends a draft with note. A blank note sends the original request
// alone.
func (d *NotificationDraft) CorrectionPrompt(note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return d.OriginalText
	}
	return "Original request: " + d.OriginalText + "\nCorrection note: " + note
}
