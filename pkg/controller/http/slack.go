package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	slackmodel "github.com/secmon-lab/kairos/pkg/domain/model/slack"
	slacksvc "github.com/secmon-lab/kairos/pkg/service/slack"
	"github.com/secmon-lab/kairos/pkg/usecase"
	"github.com/secmon-lab/kairos/pkg/utils/async"
	"github.com/secmon-lab/kairos/pkg/utils/errutil"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
	"github.com/slack-go/slack/slackevents"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const slackBodyKey contextKey = "slack_body"

// signatureMaxAge is the replay window for signed requests
const signatureMaxAge = 5 * time.Minute

// verifySlackSignature verifies the Slack request signature
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}

	if signature == "" {
		return goerr.New("missing signature")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	now := time.Now().Unix()
	if now-ts > int64(signatureMaxAge.Seconds()) {
		return goerr.New("timestamp too old", goerr.V("timestamp", timestamp), goerr.V("now", now))
	}

	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	if _, err := mac.Write([]byte(baseString)); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware creates a middleware that verifies Slack request signatures
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			defer func() {
				if err := r.Body.Close(); err != nil {
					logging.From(ctx).Error("failed to close request body", "error", err)
				}
			}()

			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			if err := verifySlackSignature(signingSecret, timestamp, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "slack signature verification failed"), http.StatusUnauthorized)
				return
			}

			// Store body in context for later use and restore it to the request
			ctx = context.WithValue(ctx, slackBodyKey, body)
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SlackHandler serves the Slack hooks: Events API, slash commands and
// interactive components.
type SlackHandler struct {
	uc  *usecase.UseCases
	svc slacksvc.Service
	now func() time.Time
}

type SlackOption func(*SlackHandler)

// WithSlackClock replaces time.Now used for approval expiry checks
func WithSlackClock(now func() time.Time) SlackOption {
	return func(h *SlackHandler) {
		h.now = now
	}
}

func NewSlackHandler(uc *usecase.UseCases, svc slacksvc.Service, opts ...SlackOption) *SlackHandler {
	h := &SlackHandler{
		uc:  uc,
		svc: svc,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleEvent handles Events API requests
func (h *SlackHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var r *slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &r); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(r.Challenge)); err != nil {
			logging.From(ctx).Error("failed to write challenge response", "error", err)
		}
		return

	case slackevents.CallbackEvent:
		// Return 200 immediately to satisfy Slack's 3-second timeout requirement
		w.WriteHeader(http.StatusOK)

		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.handleCallback(ctx, &eventsAPIEvent)
		})

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", eventsAPIEvent.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *SlackHandler) handleCallback(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	msg := slackmodel.NewMessage(event)
	if msg == nil {
		logging.From(ctx).Debug("ignoring slack event", "type", event.InnerEvent.Type)
		return nil
	}

	reply, err := h.uc.Notify.Request(ctx, msg.UserID(), msg.ChannelID(), msg.Text())
	if errors.Is(err, usecase.ErrEmptyRequest) {
		reply = usecase.MsgNeedClarification
	} else if err != nil {
		return goerr.Wrap(err, "failed to handle notify request",
			goerr.V("user_id", msg.UserID()),
			goerr.V("channel_id", msg.ChannelID()))
	}

	if err := h.svc.SendMessage(ctx, msg.ChannelID(), reply); err != nil {
		return goerr.Wrap(err, "failed to reply", goerr.V("channel_id", msg.ChannelID()))
	}
	return nil
}
