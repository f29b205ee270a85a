package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

const ovationURL = "https://services.swpc.noaa.gov/json/ovation_aurora_latest.json"

var errEmptyGrid = errors.New("aurora grid has no usable points")

// OvationSource implements spaceweather.AuroraSource using the NOAA SWPC OVATION forecast grid.
type OvationSource struct {
	httpSource
	baseURL string
}

func NewOvationSource(client *http.Client, logger *slog.Logger, metrics *observability.Metrics) *OvationSource {
	return &OvationSource{
		httpSource: newHTTPSource("aurora", client, logger, metrics),
		baseURL:    ovationURL,
	}
}

func (s *OvationSource) AuroraProbability(ctx context.Context, at spaceweather.Coordinates) (float64, bool) {
	body, err := s.get(ctx, s.baseURL)
	if err != nil {
		s.unavailable(err)
		return 0, false
	}

	var payload struct {
		Coordinates [][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		s.unavailable(fmt.Errorf("decode ovation grid: %w", err))
		return 0, false
	}

	prob, ok := nearestProbability(payload.Coordinates, at)
	if !ok {
		s.unavailable(errEmptyGrid)
		return 0, false
	}

	s.available()
	return prob, true
}

// nearestProbability returns the probability of the grid point closest to at.
// Points are (lat, lon, probability) tuples and closeness is Manhattan distance
// in degrees. On a tie the first point wins. Tuples shorter than three are skipped.
func nearestProbability(grid [][]float64, at spaceweather.Coordinates) (float64, bool) {
	var (
		best    float64
		found   bool
		minDist = math.Inf(1)
	)

	for _, point := range grid {
		if len(point) < 3 {
			continue
		}
		dist := math.Abs(point[0]-at.Lat) + math.Abs(point[1]-at.Lon)
		if dist < minDist {
			minDist = dist
			best = point[2]
			found = true
		}
	}

	return best, found
}
