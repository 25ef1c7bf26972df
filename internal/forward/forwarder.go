package forward

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ferrygo/wcfhttp/internal/metrics"
	"github.com/ferrygo/wcfhttp/internal/wcf"
)

// Forwarder is the exclusive consumer of the engine source. Each message is
// forwarded to the sink, or logged locally when no sink is configured,
// exactly once and in source order. A fault on one message never stops the
// loop.
type Forwarder struct {
	source      wcf.Source
	norm        *Normalizer
	sink        Sink // nil: log locally instead of forwarding
	pollTimeout time.Duration
	log         *slog.Logger
	done        chan struct{}
}

func New(source wcf.Source, norm *Normalizer, sink Sink, pollTimeout time.Duration, logger *slog.Logger) *Forwarder {
	return &Forwarder{
		source:      source,
		norm:        norm,
		sink:        sink,
		pollTimeout: pollTimeout,
		log:         logger,
		done:        make(chan struct{}),
	}
}

// Start launches the consume loop in its own goroutine. Call once.
func (f *Forwarder) Start(ctx context.Context) {
	go f.run(ctx)
}

// Done is closed when the loop has exited, either because the source went
// inactive or ctx was cancelled.
func (f *Forwarder) Done() <-chan struct{} {
	return f.done
}

func (f *Forwarder) run(ctx context.Context) {
	defer close(f.done)
	for f.source.Receiving() {
		select {
		case <-ctx.Done():
			f.log.Info("forwarder stopping", "reason", ctx.Err())
			return
		default:
		}

		msg, err := f.source.Next(f.pollTimeout)
		if errors.Is(err, wcf.ErrNoMessage) {
			continue // idle, not a failure
		}
		if err != nil {
			metrics.MessagesDiscarded.Inc()
			f.log.Error("receiving message failed", "err", err)
			continue
		}
		metrics.MessagesReceived.Inc()
		f.handle(ctx, msg)
	}
	f.log.Info("forwarder stopping", "reason", "source inactive")
}

// handle forwards or logs one message. Delivery failures are terminal for
// the message only.
func (f *Forwarder) handle(ctx context.Context, m *wcf.Message) {
	if f.sink == nil {
		f.log.Info("message received",
			"id", m.Id, "type", m.Type, "sender", m.Sender,
			"roomid", m.Roomid, "content", m.Content)
		return
	}
	p := f.norm.Payload(m)
	if err := f.sink.Deliver(ctx, p); err != nil {
		f.log.Error("message delivery failed", "id", m.Id, "err", err)
		return
	}
	metrics.MessagesForwarded.Inc()
}
