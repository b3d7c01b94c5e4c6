package types

// NLUMode selects the prompt used for a natural language request
type NLUMode string

const (
	NLUModeNotification           NLUMode = "notification"
	NLUModeNotificationCorrection NLUMode = "notification_correction"
	NLUModeNotificationMessage    NLUMode = "notification_message"
	NLUModeIntentRouter           NLUMode = "intent_router"
)

// AllNLUModes returns all supported modes
func AllNLUModes() []NLUMode {
	return []NLUMode{
		NLUModeNotification,
		NLUModeNotificationCorrection,
		NLUModeNotificationMessage,
		NLUModeIntentRouter,
	}
}

func (m NLUMode) IsValid() bool {
	switch m {
	case NLUModeNotification, NLUModeNotificationCorrection, NLUModeNotificationMessage, NLUModeIntentRouter:
		return true
	default:
		return false
	}
}

// ExpectsJSON reports whether the mode returns a JSON object rather than
// free text.
func (m NLUMode) ExpectsJSON() bool {
	return m != NLUModeNotificationMessage
}

func (m NLUMode) String() string {
	return string(m)
}
