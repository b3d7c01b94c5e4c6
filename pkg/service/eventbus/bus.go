package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kairos/pkg/domain/interfaces"
	"github.com/secmon-lab/kairos/pkg/domain/model"
	"github.com/secmon-lab/kairos/pkg/utils/errutil"
	"github.com/secmon-lab/kairos/pkg/utils/logging"
)

// DefaultBuffer is the capacity used when none is configured
const DefaultBuffer = 256

var (
	ErrClosed         = goerr.New("event bus is closed")
	ErrConsumerExists = goerr.New("event bus already has a consumer")
)

// Handler processes a single event. A returned error is logged and the
// consumer moves on to the next event.
type Handler func(ctx context.Context, ev model.Event) error

// Bus is a bounded FIFO queue with exactly one consumer
type Bus struct {
	events chan model.Event

	// mu guards closed. Emitters hold the read side while sending so that
	// Close never closes the channel under a pending send.
	mu     sync.RWMutex
	closed bool

	consuming atomic.Bool
	done      chan struct{}
}

var _ interfaces.EventEmitter = &Bus{}

func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		events: make(chan model.Event, buffer),
		done:   make(chan struct{}),
	}
}

// Emit enqueues ev, blocking while the bus is full. Events emitted after the
// consumer has exited are dropped without error.
func (b *Bus) Emit(ctx context.Context, ev model.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return goerr.Wrap(ErrClosed, "failed to emit event", goerr.V("event", ev.EventName()))
	}

	select {
	case <-b.done:
		logging.From(ctx).Debug("event dropped, consumer is gone", slog.String("event", ev.EventName()))
		return nil
	default:
	}

	select {
	case b.events <- ev:
		return nil
	case <-b.done:
		logging.From(ctx).Debug("event dropped, consumer is gone", slog.String("event", ev.EventName()))
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "emit canceled", goerr.V("event", ev.EventName()))
	}
}

// Close stops accepting events. The consumer drains what is queued and then
// returns. Calling Close more than once is harmless.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.events)
}

// Consume runs handler for each event in order until the bus is closed and
// drained, or ctx is canceled. Only one Consume may run per bus.
func (b *Bus) Consume(ctx context.Context, handler Handler) error {
	if !b.consuming.CompareAndSwap(false, true) {
		return ErrConsumerExists
	}
	defer close(b.done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-b.events:
			if !ok {
				return nil
			}
			b.handle(ctx, handler, ev)
		}
	}
}

func (b *Bus) handle(ctx context.Context, handler Handler, ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			_ = errutil.Handle(ctx, goerr.New("panic in event handler",
				goerr.V("panic", r),
				goerr.V("event", ev.EventName())), "event handler panicked")
		}
	}()

	if err := handler(ctx, ev); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "event handler failed", goerr.V("event", ev.EventName())), "failed to handle event")
	}
}
