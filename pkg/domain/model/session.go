package model

import (
	"time"

	"github.com/secmon-lab/kairos/pkg/domain/types"
)

// SessionWindow is how long a clarification session stays mergeable
const SessionWindow = 5 * time.Minute

// SessionKey identifies a conversation of one user in one channel
type SessionKey struct {
	UserID    string
	ChannelID string
}

// PendingSession tracks a multi-turn request that has not been resolved yet
type PendingSession struct {
	State        types.SessionState
	OriginalText string
	LastPromptAt time.Time
}

// IsStale reports whether the session has outlived SessionWindow
func (s *PendingSession) IsStale(now time.Time) bool {
	return now.Sub(s.LastPromptAt) > SessionWindow
}

// IntentResult is the output of an intent classifier
type IntentResult struct {
	Intent         types.Intent
	NormalizedText string
}

// RouteKind is the decision made for a /notify request
type RouteKind int

const (
	RouteNeedClarification RouteKind = iota
	RouteEmitNotify
)

// RouteDecision is the router's answer for a request
type RouteDecision struct {
	Kind           RouteKind
	NormalizedText string // set for RouteEmitNotify
}
