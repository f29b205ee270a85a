package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/aurora-bot/internal/observability"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 16 << 20

var (
	errStatus       = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// httpSource is the shared plumbing behind every adapter: one GET per call,
// guarded by a circuit breaker, with logging and metrics for the outcome.
type httpSource struct {
	name    string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
	metrics *observability.Metrics
}

func newHTTPSource(name string, client *http.Client, logger *slog.Logger, metrics *observability.Metrics) httpSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     5 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return httpSource{
		name:    name,
		client:  client,
		circuit: cb,
		logger:  logger.With("source", name),
		metrics: metrics,
	}
}

// get performs a single GET and returns the response body.
// There is no retry; an open breaker fails fast without touching the network.
func (s *httpSource) get(ctx context.Context, target string) ([]byte, error) {
	if s.client == nil {
		return nil, errNoHTTPClient
	}

	start := time.Now()
	defer func() {
		s.metrics.SourceFetchDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	}()

	result, err := s.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			// url.Error embeds the full URL, which may carry an API key.
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				return nil, fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errStatus, resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

// unavailable records a failed fetch. Callers return ok == false right after.
func (s *httpSource) unavailable(err error) {
	s.metrics.SourceFetches.WithLabelValues(s.name, "unavailable").Inc()
	s.logger.Warn("source unavailable", "error", err)
}

// available records a successful fetch.
func (s *httpSource) available() {
	s.metrics.SourceFetches.WithLabelValues(s.name, "ok").Inc()
}
