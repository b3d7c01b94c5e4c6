package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/kairos/pkg/utils/errutil"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
)

// DefaultDigestHour is the local hour the todo digest goes out
const DefaultDigestHour = 7

// TodoDigester sends every user with open todos their list
type TodoDigester interface {
	SendDailyDigest(ctx context.Context) error
}

// TodoDigestWorker runs the todo digest once a day at a fixed local hour
type TodoDigestWorker struct {
	digester TodoDigester
	location *time.Location
	hour     int
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewTodoDigestWorker(digester TodoDigester, location *time.Location, hour int) *TodoDigestWorker {
	if location == nil {
		location = time.UTC
	}
	if hour < 0 || hour > 23 {
		hour = DefaultDigestHour
	}
	return &TodoDigestWorker{
		digester: digester,
		location: location,
		hour:     hour,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (w *TodoDigestWorker) Start(ctx context.Context) error {
	logging.From(ctx).Info("Todo digest worker starting",
		"hour", w.hour,
		"location", w.location.String())
	go w.run(ctx)
	return nil
}

func (w *TodoDigestWorker) Stop() {
	logging.Default().Info("Todo digest worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Todo digest worker stopped")
}

func (w *TodoDigestWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		now := w.now()
		next := NextDigestTime(now, w.location, w.hour)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			if err := w.digester.SendDailyDigest(ctx); err != nil {
				_ = errutil.Handle(ctx, err, "failed to send todo digest")
			}

		case <-w.stopCh:
			timer.Stop()
			return

		case <-ctx.Done():
			timer.Stop()
			logging.From(ctx).Info("Todo digest worker context cancelled")
			return
		}
	}
}

// NextDigestTime returns the first moment strictly after now at which the
// wall clock in loc reads hour:00.
func NextDigestTime(now time.Time, loc *time.Location, hour int) time.Time {
	local := now.In(loc)
	target := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !local.Before(target) {
		target = time.Date(local.Year(), local.Month(), local.Day()+1, hour, 0, 0, 0, loc)
	}
	return target
}
