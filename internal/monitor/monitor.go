package monitor

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/aurora-bot/internal/format"
	"github.com/i474232898/aurora-bot/internal/notify"
	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

// AlertThreshold is the planetary K-index at or above which subscribers are alerted.
const AlertThreshold = 4.0

// IndexReader fetches the latest planetary K-index.
type IndexReader interface {
	ReadIndexOnly(ctx context.Context) (float64, bool)
}

// Notifier delivers a message to every subscriber.
type Notifier interface {
	NotifySubscribers(ctx context.Context, msg notify.Message) notify.Result
}

// Monitor checks the K-index once per tick and alerts subscribers when it is high.
type Monitor struct {
	index    IndexReader
	notifier Notifier
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a new Monitor.
func New(index IndexReader, notifier Notifier, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Monitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{
		index:    index,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Exceeds reports whether kp triggers an alert.
func Exceeds(kp float64) bool {
	return kp >= AlertThreshold
}

// Tick runs one evaluation. It returns the event and true when subscribers were notified.
// An unavailable index is not an error; the monitor simply waits for the next tick.
// The ctx deadline bounds the index fetch only: once started, a broadcast
// attempts every recipient even if ctx expires.
func (m *Monitor) Tick(ctx context.Context) (spaceweather.ThresholdEvent, bool) {
	kp, ok := m.index.ReadIndexOnly(ctx)
	if !ok {
		m.metrics.MonitorTicks.WithLabelValues("unavailable").Inc()
		m.logger.Info("kp index unavailable, skipping tick")
		return spaceweather.ThresholdEvent{}, false
	}
	m.metrics.LastKpIndex.Set(kp)

	if !Exceeds(kp) {
		m.metrics.MonitorTicks.WithLabelValues("idle").Inc()
		m.logger.Info("kp index below threshold", "kp", kp, "threshold", AlertThreshold)
		return spaceweather.ThresholdEvent{}, false
	}

	event := spaceweather.ThresholdEvent{Index: kp, ReadAt: m.clock.Now().UTC()}
	m.metrics.MonitorTicks.WithLabelValues("triggered").Inc()
	m.metrics.ThresholdAlerts.Inc()
	m.logger.Info("kp index crossed threshold, notifying subscribers",
		"kp", kp,
		"threshold", AlertThreshold,
		"read_at", event.ReadAt,
	)

	res := m.notifier.NotifySubscribers(context.WithoutCancel(ctx), notify.Message{Text: format.Alert(kp), Mode: notify.ModeHTML})
	m.logger.Info("threshold alert dispatched",
		"kp", kp,
		"delivered", res.Delivered,
		"failed", res.Failed,
	)

	return event, true
}
