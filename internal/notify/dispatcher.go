// Package notify fans a message out to chat recipients.
//
// Delivery is best-effort and independent per recipient: a failed send is
// logged and counted, the remaining recipients are still attempted, and the
// recipient stays subscribed. There is no batching, rate limiting or retry.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

// RenderMode tells the transport how to interpret message text.
type RenderMode string

const (
	ModePlain RenderMode = ""
	ModeHTML  RenderMode = "HTML"
)

// Message is text plus its render mode.
type Message struct {
	Text string
	Mode RenderMode
}

// Transport delivers text to a single chat recipient.
type Transport interface {
	Send(ctx context.Context, recipient int64, text string, mode RenderMode) error
}

// Result summarizes one broadcast.
type Result struct {
	Attempted int
	Delivered int
	Failed    int
}

// Dispatcher broadcasts messages to the subscriber set.
type Dispatcher struct {
	transport Transport
	store     spaceweather.SubscriberStore
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(transport Transport, store spaceweather.SubscriberStore, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		store:     store,
		logger:    logger,
		metrics:   metrics,
	}
}

// NotifySubscribers sends msg to every current subscriber.
// An unreadable store is logged and treated as an empty set.
func (d *Dispatcher) NotifySubscribers(ctx context.Context, msg Message) Result {
	recipients, err := d.store.List(ctx)
	if err != nil {
		d.logger.Warn("subscriber list unavailable, treating as empty", "error", err)
		recipients = nil
	}
	d.metrics.Subscribers.Set(float64(len(recipients)))
	return d.Broadcast(ctx, msg, recipients)
}

// Broadcast attempts delivery to each recipient independently.
func (d *Dispatcher) Broadcast(ctx context.Context, msg Message, recipients []int64) Result {
	res := Result{Attempted: len(recipients)}

	for _, id := range recipients {
		if err := d.sendOne(ctx, id, msg); err != nil {
			res.Failed++
			d.metrics.Deliveries.WithLabelValues("failed").Inc()
			d.logger.Warn("delivery failed", "chat_id", id, "error", err)
			continue
		}
		res.Delivered++
		d.metrics.Deliveries.WithLabelValues("delivered").Inc()
	}

	if res.Failed > 0 {
		d.logger.Warn("broadcast finished with failures",
			"attempted", res.Attempted,
			"delivered", res.Delivered,
			"failed", res.Failed,
		)
	} else {
		d.logger.Info("broadcast finished", "delivered", res.Delivered)
	}

	return res
}

// sendOne isolates a single send, converting a transport panic into an error.
func (d *Dispatcher) sendOne(ctx context.Context, id int64, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transport panic: %v", r)
		}
	}()
	return d.transport.Send(ctx, id, msg.Text, msg.Mode)
}
