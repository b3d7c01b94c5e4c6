package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/utils/errutil"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
)

// DefaultDeliveryInterval is how often the scheduler scans notifications
const DefaultDeliveryInterval = 5 * time.Second

// DeliveryScheduler polls the notification store and sends due reminders.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - The store lock is held for a whole tick, including outbound delivery
type DeliveryScheduler struct {
	repo      interfaces.NotificationRepository
	formatter interfaces.MessageFormatter
	messenger interfaces.Messenger
	interval  time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
}

type SchedulerOption func(*DeliveryScheduler)

// WithSchedulerClock replaces time.Now
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *DeliveryScheduler) {
		s.now = now
	}
}

// NewDeliveryScheduler creates a scheduler. A non-positive interval uses
// DefaultDeliveryInterval.
func NewDeliveryScheduler(repo interfaces.NotificationRepository, formatter interfaces.MessageFormatter, messenger interfaces.Messenger, interval time.Duration, opts ...SchedulerOption) *DeliveryScheduler {
	if interval <= 0 {
		interval = DefaultDeliveryInterval
	}
	s := &DeliveryScheduler{
		repo:      repo,
		formatter: formatter,
		messenger: messenger,
		interval:  interval,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the delivery loop in the background
func (s *DeliveryScheduler) Start(ctx context.Context) error {
	logging.From(ctx).Info("Delivery scheduler starting", "interval", s.interval.String())
	go s.run(ctx)
	return nil
}

// Stop signals the scheduler to stop and waits for the running tick
func (s *DeliveryScheduler) Stop() {
	logging.Default().Info("Delivery scheduler stopping")
	close(s.stopCh)
	<-s.doneCh
	logging.Default().Info("Delivery scheduler stopped")
}

func (s *DeliveryScheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Tick(ctx, s.now()); err != nil {
				_ = errutil.Handle(ctx, err, "failed to persist notifications after delivery")
			}

		case <-s.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("Delivery scheduler context cancelled")
			return
		}
	}
}

// Tick runs one scan. At most one delivery happens per notification; due
// times are popped even when sending fails. The returned error is the
// persistence failure, if any. In-memory changes are kept regardless.
func (s *DeliveryScheduler) Tick(ctx context.Context, now time.Time) error {
	return s.repo.Mutate(ctx, func(entries map[string]*model.Notification) error {
		var expired []string

		for id, n := range entries {
			if n.IsExhausted() {
				expired = append(expired, id)
				continue
			}
			if !n.IsDue(now) {
				continue
			}

			s.deliver(ctx, n, now)
			n.PopNext()
			if n.IsExhausted() {
				expired = append(expired, id)
			}
		}

		for _, id := range expired {
			logging.From(ctx).Info("No more notifications, expiring", slog.String("id", id))
			delete(entries, id)
		}
		return nil
	})
}

func (s *DeliveryScheduler) deliver(ctx context.Context, n *model.Notification, now time.Time) {
	body := s.formatter.FormatMessage(ctx, n, now)
	text := body
	if mentions := n.Mentions(); mentions != "" {
		text = mentions + "\n" + body
	}

	if n.Channel != "" {
		if err := s.messenger.SendMessage(ctx, n.Channel, text); err != nil {
			_ = errutil.Handle(ctx, err, "failed to send notification")
		}
		return
	}

	if len(n.Notify) == 0 {
		logging.From(ctx).Warn("Notification has neither channel nor recipients", slog.String("id", n.ID))
		return
	}
	for _, userID := range n.Notify {
		if err := s.messenger.SendDirectMessage(ctx, userID, body); err != nil {
			_ = errutil.Handle(ctx, err, "failed to send notification by direct message")
		}
	}
}
