package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
)

const (
	defaultInterval    = 3 * time.Hour
	defaultTickTimeout = time.Minute
)

// Ticker is one unit of periodic work.
type Ticker interface {
	Tick(ctx context.Context)
}

// TickerFunc adapts a plain function to Ticker.
type TickerFunc func(ctx context.Context)

func (f TickerFunc) Tick(ctx context.Context) { f(ctx) }

// Scheduler runs a Ticker at a fixed interval. The first tick fires as soon as
// the scheduler starts; ticks never overlap.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	ticker      Ticker
	interval    time.Duration
	tickTimeout time.Duration
	logger      *slog.Logger
}

// New creates a new Scheduler. Non-positive durations fall back to defaults.
func New(ticker Ticker, interval, tickTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if tickTimeout <= 0 {
		tickTimeout = defaultTickTimeout
	}
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		ticker:      ticker,
		interval:    interval,
		tickTimeout: tickTimeout,
		logger:      logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.ticker == nil {
		return errors.New("scheduler: no ticker configured")
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.logger.Info("scheduler started", "interval", s.interval.String())
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	tickID := uuid.NewString()
	log := s.logger.With("tick_id", tickID)

	ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
	defer cancel()

	start := time.Now()
	log.Info("scheduler: running monitor tick")
	s.ticker.Tick(ctx)
	log.Info("scheduler: completed monitor tick", "duration", time.Since(start).String())
}

// Stop stops the scheduler and cancels any future ticks.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
