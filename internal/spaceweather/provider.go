package spaceweather

import (
	"context"
)

// Each source performs a single upstream round trip per call and reports
// ok == false when the data is unavailable for any reason. Sources never
// return errors; they log the cause themselves.

// AuroraSource reports the forecast aurora probability (percent) nearest to a point.
type AuroraSource interface {
	AuroraProbability(ctx context.Context, at Coordinates) (float64, bool)
}

// PlanetarySource reports the latest planetary K-index.
type PlanetarySource interface {
	PlanetaryIndex(ctx context.Context) (PlanetaryIndex, bool)
}

// RegionalSource reports the regional magnetometer row for the configured station.
type RegionalSource interface {
	RegionalIndex(ctx context.Context) (RegionalIndexReading, bool)
}

// WeatherSource reports current weather at the configured station.
type WeatherSource interface {
	CurrentWeather(ctx context.Context) (WeatherReading, bool)
}

// SubscriberStore is the contract every subscriber backend (file, Redis, memory) satisfies.
type SubscriberStore interface {
	// List returns current members. A store that was never written returns an empty list.
	List(ctx context.Context) ([]int64, error)
	// Add inserts id and persists the set. It reports false when id was already present.
	Add(ctx context.Context, id int64) (bool, error)
	// Remove deletes id and persists the set. It reports false when id was absent.
	Remove(ctx context.Context, id int64) (bool, error)
}
