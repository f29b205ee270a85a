package spaceweather

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
)

// Sources bundles the four upstream adapters. A nil source is treated as unavailable.
type Sources struct {
	Aurora    AuroraSource
	Planetary PlanetarySource
	Regional  RegionalSource
	Weather   WeatherSource
}

// Aggregator samples all sources and merges them into a Snapshot.
// It is shared by the threshold monitor, the chat commands and the HTTP API.
type Aggregator struct {
	sources Sources
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewAggregator creates a new Aggregator.
func NewAggregator(sources Sources, clock clockwork.Clock, logger *slog.Logger) *Aggregator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Aggregator{
		sources: sources,
		clock:   clock,
		logger:  logger,
	}
}

// BuildSnapshot queries every source concurrently and returns whatever they produced.
// It never fails; with every source down the snapshot has only TakenAt set.
func (a *Aggregator) BuildSnapshot(ctx context.Context, at Coordinates) Snapshot {
	var (
		wg sync.WaitGroup
		r  sourceResults
	)

	// Each goroutine writes a disjoint set of fields; wg.Wait orders the reads.
	if a.sources.Aurora != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.aurora, r.auroraOK = a.sources.Aurora.AuroraProbability(ctx, at)
		}()
	}
	if a.sources.Planetary != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.planetary, r.planetaryOK = a.sources.Planetary.PlanetaryIndex(ctx)
		}()
	}
	if a.sources.Regional != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.regional, r.regionalOK = a.sources.Regional.RegionalIndex(ctx)
		}()
	}
	if a.sources.Weather != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.weather, r.weatherOK = a.sources.Weather.CurrentWeather(ctx)
		}()
	}

	wg.Wait()

	a.logger.Debug("snapshot built",
		"available_sources", r.available(),
		"lat", at.Lat,
		"lon", at.Lon,
	)

	return assembleSnapshot(a.clock.Now(), r)
}

// ReadIndexOnly fetches just the planetary K-index.
func (a *Aggregator) ReadIndexOnly(ctx context.Context) (float64, bool) {
	if a.sources.Planetary == nil {
		return 0, false
	}
	idx, ok := a.sources.Planetary.PlanetaryIndex(ctx)
	if !ok {
		return 0, false
	}
	return idx.Kp, true
}
