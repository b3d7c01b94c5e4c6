package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/domain/types"
)

// SessionRouter resolves multi-turn /notify requests. Text sent while a
// session is still unresolved is merged with the earlier text.
type SessionRouter struct {
	sessions   interfaces.SessionRepository
	classifier interfaces.Classifier
}

func NewSessionRouter(sessions interfaces.SessionRepository, classifier interfaces.Classifier) *SessionRouter {
	return &SessionRouter{
		sessions:   sessions,
		classifier: classifier,
	}
}

// RouteNotify classifies text in the context of the caller's session and
// records the new session state.
func (r *SessionRouter) RouteNotify(ctx context.Context, key model.SessionKey, text string, now time.Time) (*model.RouteDecision, error) {
	combined := text

	session, err := r.sessions.Get(ctx, key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get session", goerr.V(UserIDKey, key.UserID))
	}
	if session != nil {
		if session.IsStale(now) {
			if err := r.sessions.Delete(ctx, key); err != nil {
				return nil, goerr.Wrap(err, "failed to discard stale session", goerr.V(UserIDKey, key.UserID))
			}
		} else if session.State == types.SessionStateUnknown {
			combined = session.OriginalText + " " + text
		}
	}

	result := r.classifier.Classify(ctx, combined)

	next := &model.PendingSession{
		State:        types.SessionStateUnknown,
		OriginalText: combined,
		LastPromptAt: now,
	}
	decision := &model.RouteDecision{Kind: model.RouteNeedClarification}

	if result.Intent == types.IntentNotification {
		next.State = types.SessionStatePendingNotification
		decision = &model.RouteDecision{
			Kind:           model.RouteEmitNotify,
			NormalizedText: result.NormalizedText,
		}
	}

	if err := r.sessions.Put(ctx, key, next); err != nil {
		return nil, goerr.Wrap(err, "failed to save session", goerr.V(UserIDKey, key.UserID))
	}
	return decision, nil
}
