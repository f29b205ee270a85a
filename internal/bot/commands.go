package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i474232898/aurora-bot/internal/format"
	"github.com/i474232898/aurora-bot/internal/monitor"
	"github.com/i474232898/aurora-bot/internal/notify"
	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

const (
	msgSubscribed        = "You have subscribed for notifications. You will receive notifications when the KP-Index is high."
	msgAlreadySubscribed = "You are already subscribed to notifications."
	msgUnsubscribed      = "You have been unsubscribed from notifications."
	msgNotSubscribed     = "You are not subscribed to notifications."
	msgStoreFailure      = "Sorry, your subscription could not be updated right now. Please try again later."
)

// Handler answers one chat command for chatID.
type Handler func(ctx context.Context, chatID int64) error

// Registrar binds command names to handlers.
type Registrar interface {
	Handle(command string, h Handler)
}

// SnapshotBuilder produces a snapshot for a coordinate.
type SnapshotBuilder interface {
	BuildSnapshot(ctx context.Context, at spaceweather.Coordinates) spaceweather.Snapshot
}

// Commands holds the dependencies shared by chat command handlers.
type Commands struct {
	snapshots SnapshotBuilder
	store     spaceweather.SubscriberStore
	transport notify.Transport
	place     spaceweather.Place
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a new Commands.
func New(
	snapshots SnapshotBuilder,
	store spaceweather.SubscriberStore,
	transport notify.Transport,
	place spaceweather.Place,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Commands {
	return &Commands{
		snapshots: snapshots,
		store:     store,
		transport: transport,
		place:     place,
		logger:    logger,
		metrics:   metrics,
	}
}

// Register binds every command to r.
func (c *Commands) Register(r Registrar) {
	r.Handle("start", c.instrument("start", c.Start))
	r.Handle("help", c.instrument("help", c.Help))
	r.Handle("resources", c.instrument("resources", c.Resources))
	r.Handle("aurora", c.instrument("aurora", c.Aurora))
	r.Handle("subscribe", c.instrument("subscribe", c.Subscribe))
	r.Handle("unsubscribe", c.instrument("unsubscribe", c.Unsubscribe))
}

func (c *Commands) instrument(name string, h Handler) Handler {
	return func(ctx context.Context, chatID int64) error {
		err := h(ctx, chatID)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.Commands.WithLabelValues(name, outcome).Inc()
		return err
	}
}

func (c *Commands) Start(ctx context.Context, chatID int64) error {
	c.reply(ctx, chatID, format.Start(), notify.ModePlain)
	return nil
}

func (c *Commands) Help(ctx context.Context, chatID int64) error {
	c.reply(ctx, chatID, format.Help(monitor.AlertThreshold), notify.ModePlain)
	return nil
}

func (c *Commands) Resources(ctx context.Context, chatID int64) error {
	c.reply(ctx, chatID, format.Resources(), notify.ModeHTML)
	return nil
}

// Aurora replies with the full digest for the configured place.
func (c *Commands) Aurora(ctx context.Context, chatID int64) error {
	snap := c.snapshots.BuildSnapshot(ctx, c.place.Coordinates)
	c.reply(ctx, chatID, format.Digest(snap, c.place), notify.ModeHTML)
	return nil
}

// Subscribe adds chatID to the subscriber set.
func (c *Commands) Subscribe(ctx context.Context, chatID int64) error {
	added, err := c.store.Add(ctx, chatID)
	if err != nil {
		c.reply(ctx, chatID, msgStoreFailure, notify.ModePlain)
		return fmt.Errorf("subscribe chat %d: %w", chatID, err)
	}

	text := msgSubscribed
	if !added {
		text = msgAlreadySubscribed
	} else {
		c.logger.Info("chat subscribed", "chat_id", chatID)
	}
	c.reply(ctx, chatID, text, notify.ModePlain)
	return nil
}

// Unsubscribe removes chatID from the subscriber set.
func (c *Commands) Unsubscribe(ctx context.Context, chatID int64) error {
	removed, err := c.store.Remove(ctx, chatID)
	if err != nil {
		c.reply(ctx, chatID, msgStoreFailure, notify.ModePlain)
		return fmt.Errorf("unsubscribe chat %d: %w", chatID, err)
	}

	text := msgUnsubscribed
	if !removed {
		text = msgNotSubscribed
	} else {
		c.logger.Info("chat unsubscribed", "chat_id", chatID)
	}
	c.reply(ctx, chatID, text, notify.ModePlain)
	return nil
}

// reply failures are logged, not returned: a handler errors only on store failures.
func (c *Commands) reply(ctx context.Context, chatID int64, text string, mode notify.RenderMode) {
	if err := c.transport.Send(ctx, chatID, text, mode); err != nil {
		c.logger.Warn("reply failed", "chat_id", chatID, "error", err)
	}
}
