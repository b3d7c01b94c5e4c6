package classifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kairos/pkg/domain/types"
	"github.com/secmon-lab/kairos/pkg/service/classifier"
)

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		intent types.Intent
	}{
		{"empty", "   ", types.IntentUnknown},
		{"relative day", "call mom tomorrow", types.IntentNotification},
		{"weekday", "dentist Friday", types.IntentNotification},
		{"month", "renew passport in March", types.IntentNotification},
		{"clock time", "standup 9:30", types.IntentNotification},
		{"date with slash", "pay rent 5/1", types.IntentNotification},
		{"slash without digits", "and/or", types.IntentUnknown},
		{"pm suffix", "gym 6pm", types.IntentNotification},
		{"separate am", "run 7 am", types.IntentNotification},
		{"am inside a word", "spam", types.IntentUnknown},
		{"no time", "buy milk", types.IntentUnknown},
		{"upper case", "CALL MOM TOMORROW", types.IntentNotification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.NewHeuristic().Classify(context.Background(), tt.text)
			gt.Value(t, got.Intent).Equal(tt.intent)
		})
	}

	t.Run("normalized text is trimmed", func(t *testing.T) {
		got := classifier.NewHeuristic().Classify(context.Background(), "  buy milk tomorrow  ")
		gt.Value(t, got.NormalizedText).Equal("buy milk tomorrow")
	})
}

type stubNLU struct {
	reply string
	err   error
	modes []types.NLUMode
}

func (s *stubNLU) Generate(ctx context.Context, text string, mode types.NLUMode) (string, error) {
	s.modes = append(s.modes, mode)
	return s.reply, s.err
}

func TestLLM(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the model answer", func(t *testing.T) {
		nlu := &stubNLU{reply: `{"intent":"todolist","normalized_text":"finish report"}`}
		got := classifier.NewLLM(nlu).Classify(ctx, "pls finish report")

		gt.Value(t, got.Intent).Equal(types.IntentTodoList)
		gt.Value(t, got.NormalizedText).Equal("finish report")
		gt.Array(t, nlu.modes).Length(1).Required()
		gt.Value(t, nlu.modes[0]).Equal(types.NLUModeIntentRouter)
	})

	t.Run("falls back on model error", func(t *testing.T) {
		got := classifier.NewLLM(&stubNLU{err: errors.New("timeout")}).Classify(ctx, "call mom tomorrow")
		gt.Value(t, got.Intent).Equal(types.IntentNotification)
		gt.Value(t, got.NormalizedText).Equal("call mom tomorrow")
	})

	t.Run("falls back on malformed output", func(t *testing.T) {
		got := classifier.NewLLM(&stubNLU{reply: "notification!"}).Classify(ctx, "buy milk")
		gt.Value(t, got.Intent).Equal(types.IntentUnknown)
	})

	t.Run("unknown label maps to unknown", func(t *testing.T) {
		got := classifier.NewLLM(&stubNLU{reply: `{"intent":"weather","normalized_text":"rain?"}`}).Classify(ctx, "rain?")
		gt.Value(t, got.Intent).Equal(types.IntentUnknown)
	})
}
