package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/domain/types"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
)

// NotificationUseCase owns persisted notifications: creation from a
// confirmed draft or the CLI, and rendering of delivery messages.
type NotificationUseCase struct {
	repo interfaces.NotificationRepository
	nlu  interfaces.NLU // optional
	now  func() time.Time
}

var (
	_ interfaces.NotificationPersister = &NotificationUseCase{}
	_ interfaces.MessageFormatter      = &NotificationUseCase{}
)

func NewNotificationUseCase(repo interfaces.NotificationRepository, nlu interfaces.NLU) *NotificationUseCase {
	return &NotificationUseCase{
		repo: repo,
		nlu:  nlu,
		now:  time.Now,
	}
}

// CreateNotification schedules deliveries ahead of target for the comma
// separated recipients. A target less than an hour away yields an entry
// with no delivery time, which the scheduler expires on its next tick.
func (uc *NotificationUseCase) CreateNotification(ctx context.Context, content, recipients string, target time.Time, channel string) error {
	_, err := uc.create(ctx, content, recipients, target, channel)
	return err
}

func (uc *NotificationUseCase) create(ctx context.Context, content, recipients string, target time.Time, channel string) (*model.Notification, error) {
	if target.IsZero() {
		return nil, goerr.Wrap(ErrInvalidTarget, "notification target time is required")
	}

	n := &model.Notification{
		ID:                model.NewNotificationID(),
		Content:           content,
		Notify:            model.ParseRecipients(recipients),
		NotificationTimes: model.NotificationTimes(target.UTC(), uc.now().UTC()),
		Channel:           channel,
	}

	if err := uc.repo.Insert(ctx, n.ID, n); err != nil {
		return nil, goerr.Wrap(err, "failed to create notification",
			goerr.V("content", content),
			goerr.V("target", target))
	}

	logging.From(ctx).Info("Notification created",
		slog.String("id", n.ID),
		slog.Int("deliveries", len(n.NotificationTimes)))
	return n, nil
}

// CreateFromText extracts content and time from free text and schedules
// the result without an approval step.
func (uc *NotificationUseCase) CreateFromText(ctx context.Context, text, recipients, channel string) (*model.Notification, error) {
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(ErrEmptyRequest, "text is required")
	}
	if uc.nlu == nil {
		return nil, goerr.New("language model is not configured")
	}

	raw, err := uc.nlu.Generate(ctx, text, types.NLUModeNotification)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract notification", goerr.V("text", text))
	}
	payload, err := model.ParseNotificationPayload(raw)
	if err != nil {
		return nil, err
	}

	return uc.create(ctx, payload.Content, recipients, payload.Time, channel)
}

// ListNotifications returns stored notifications ordered by next delivery
func (uc *NotificationUseCase) ListNotifications(ctx context.Context) ([]*model.Notification, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications")
	}

	slices.SortFunc(list, func(a, b *model.Notification) int {
		at, aok := a.NextTime()
		bt, bok := b.NextTime()
		switch {
		case !aok && !bok:
			return strings.Compare(a.ID, b.ID)
		case !aok:
			return 1
		case !bok:
			return -1
		}
		return at.Compare(bt)
	})
	return list, nil
}

type messageContext struct {
	Content              string     `json:"content"`
	EventTime            time.Time  `json:"event_time"`
	NextNotificationTime *time.Time `json:"next_notification_time,omitempty"`
	HoursRemaining       int64      `json:"hours_remaining"`
}

// FormatMessage renders the delivery text. It never fails: without a
// model answer the text falls back to a fixed template.
func (uc *NotificationUseCase) FormatMessage(ctx context.Context, n *model.Notification, now time.Time) string {
	eventTime, ok := n.EventTime()
	if !ok {
		return "Notification: " + n.Content
	}
	fallback := "Notification: " + n.Content + " at " + model.FormatTime(eventTime)

	if uc.nlu == nil {
		return fallback
	}

	msgCtx := messageContext{
		Content:   n.Content,
		EventTime: eventTime.UTC(),
	}
	// The earliest entry is the one firing now; the announced next
	// delivery is the one after it.
	if len(n.NotificationTimes) > 1 {
		next := n.NotificationTimes[1].UTC()
		msgCtx.NextNotificationTime = &next
	}
	msgCtx.HoursRemaining = int64(eventTime.Sub(now) / time.Hour)

	structured, err := json.Marshal(msgCtx)
	if err != nil {
		return fallback
	}

	body, err := uc.nlu.Generate(ctx, string(structured), types.NLUModeNotificationMessage)
	if err != nil {
		logging.From(ctx).Warn("Failed to generate notification message, falling back", slog.Any("error", err))
		return fallback
	}
	if strings.TrimSpace(body) == "" {
		return fallback
	}
	return body
}
