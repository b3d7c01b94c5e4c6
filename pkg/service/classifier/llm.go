package classifier

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/domain/types"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
)

// LLM asks the model for the intent and falls back to keyword matching
// when the model fails or answers with something unparsable.
type LLM struct {
	nlu interfaces.NLU
}

var _ interfaces.Classifier = &LLM{}

func NewLLM(nlu interfaces.NLU) *LLM {
	return &LLM{nlu: nlu}
}

func (c *LLM) Classify(ctx context.Context, text string) *model.IntentResult {
	logger := logging.From(ctx)

	raw, err := c.nlu.Generate(ctx, text, types.NLUModeIntentRouter)
	if err != nil {
		logger.Warn("intent router failed, using keyword match", slog.Any("error", err))
		return classifyByKeywords(text)
	}

	result, err := model.ParseIntentResult(raw, text)
	if err != nil {
		logger.Warn("intent router returned malformed output, using keyword match", slog.Any("error", err))
		return classifyByKeywords(text)
	}
	return result
}
