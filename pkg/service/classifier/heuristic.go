package classifier

import (
	"context"
	"strings"

	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/domain/types"
)

var timeTokens = []string{
	"today", "tomorrow", "tonight", "morning", "afternoon", "evening",
	"next ", "this ", "at ", "in ", "on ",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// Heuristic classifies by looking for time expressions. It only ever
// answers notification or unknown.
type Heuristic struct{}

var _ interfaces.Classifier = Heuristic{}

func NewHeuristic() Heuristic {
	return Heuristic{}
}

func (Heuristic) Classify(ctx context.Context, text string) *model.IntentResult {
	return classifyByKeywords(text)
}

func classifyByKeywords(text string) *model.IntentResult {
	normalized := strings.TrimSpace(text)
	result := &model.IntentResult{
		Intent:         types.IntentUnknown,
		NormalizedText: normalized,
	}
	if normalized != "" && hasTimeTokens(normalized) {
		result.Intent = types.IntentNotification
	}
	return result
}

func hasTimeTokens(text string) bool {
	lower := strings.ToLower(text)
	for _, token := range timeTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}

	if strings.ContainsAny(lower, "/:") {
		return strings.ContainsAny(lower, "0123456789")
	}

	return hasMeridiem(lower)
}

// hasMeridiem finds "am" or "pm" not surrounded by other letters, as in
// "5pm" or "at 9 am".
func hasMeridiem(lower string) bool {
	for i := 0; i+1 < len(lower); i++ {
		if (lower[i] != 'a' && lower[i] != 'p') || lower[i+1] != 'm' {
			continue
		}
		if i > 0 && isASCIILetter(lower[i-1]) {
			continue
		}
		if i+2 < len(lower) && isASCIILetter(lower[i+2]) {
			continue
		}
		return true
	}
	return false
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
