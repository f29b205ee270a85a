package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

const (
	kpIndexURL = "https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json"

	kpField        = "Kp"
	timestampField = "time_tag"
)

var errKpTable = errors.New("unexpected planetary index table")

// KpIndexSource implements spaceweather.PlanetarySource using the NOAA planetary K-index table.
type KpIndexSource struct {
	httpSource
	baseURL string
}

func NewKpIndexSource(client *http.Client, logger *slog.Logger, metrics *observability.Metrics) *KpIndexSource {
	return &KpIndexSource{
		httpSource: newHTTPSource("planetary", client, logger, metrics),
		baseURL:    kpIndexURL,
	}
}

func (s *KpIndexSource) PlanetaryIndex(ctx context.Context) (spaceweather.PlanetaryIndex, bool) {
	body, err := s.get(ctx, s.baseURL)
	if err != nil {
		s.unavailable(err)
		return spaceweather.PlanetaryIndex{}, false
	}

	idx, err := parseKpTable(body)
	if err != nil {
		s.unavailable(err)
		return spaceweather.PlanetaryIndex{}, false
	}

	s.available()
	return idx, true
}

// parseKpTable reads a header row followed by data rows and returns the
// Kp and time_tag values of the last row.
func parseKpTable(body []byte) (spaceweather.PlanetaryIndex, error) {
	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return spaceweather.PlanetaryIndex{}, fmt.Errorf("%w: %v", errKpTable, err)
	}
	if len(rows) < 2 {
		return spaceweather.PlanetaryIndex{}, fmt.Errorf("%w: %d rows", errKpTable, len(rows))
	}

	header, latest := rows[0], rows[len(rows)-1]
	fields := make(map[string]any, len(header))
	for i, key := range header {
		if i >= len(latest) {
			break
		}
		if name, ok := key.(string); ok {
			fields[name] = latest[i]
		}
	}

	kp, err := parseNumber(fields[kpField])
	if err != nil {
		return spaceweather.PlanetaryIndex{}, fmt.Errorf("%w: field %s: %v", errKpTable, kpField, err)
	}

	ts, ok := fields[timestampField].(string)
	if !ok || ts == "" {
		return spaceweather.PlanetaryIndex{}, fmt.Errorf("%w: field %s missing", errKpTable, timestampField)
	}

	return spaceweather.PlanetaryIndex{Kp: kp, Timestamp: ts}, nil
}

// parseNumber accepts a JSON number or a numeric string.
func parseNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	case nil:
		return 0, errors.New("missing")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
