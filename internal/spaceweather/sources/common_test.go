package sources

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/i474232898/aurora-bot/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHTTPClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Second}
}

// serve starts a test server answering every request with status and body.
func serve(t *testing.T, status int, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fetchCount(m *observability.Metrics, source, outcome string) float64 {
	return testutil.ToFloat64(m.SourceFetches.WithLabelValues(source, outcome))
}

func TestHTTPSource_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := newHTTPSource("test", testHTTPClient(), testLogger(), observability.NewMetricsForTesting())

	for i := 0; i < 5; i++ {
		_, err := src.get(t.Context(), srv.URL)
		assert.ErrorIs(t, err, errStatus)
	}

	_, err := src.get(t.Context(), srv.URL)
	assert.ErrorIs(t, err, errCircuitOpen)
	assert.Equal(t, 5, hits, "open breaker must not reach the network")
}

func TestHTTPSource_NoClient(t *testing.T) {
	src := newHTTPSource("test", nil, testLogger(), observability.NewMetricsForTesting())
	_, err := src.get(t.Context(), "http://unused")
	assert.ErrorIs(t, err, errNoHTTPClient)
}

func TestHTTPSource_TransportErrorHidesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	src := newHTTPSource("test", testHTTPClient(), testLogger(), observability.NewMetricsForTesting())
	_, err := src.get(t.Context(), addr+"/?appid=secret-token")

	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token")
}
