package spaceweather

import (
	"time"

	"github.com/i474232898/aurora-bot/internal/common"
)

// sourceResults collects what each source returned during one cycle.
type sourceResults struct {
	aurora      float64
	auroraOK    bool
	planetary   PlanetaryIndex
	planetaryOK bool
	regional    RegionalIndexReading
	regionalOK  bool
	weather     WeatherReading
	weatherOK   bool
}

// available counts the sources that produced data.
func (r sourceResults) available() int {
	n := 0
	for _, ok := range []bool{r.auroraOK, r.planetaryOK, r.regionalOK, r.weatherOK} {
		if ok {
			n++
		}
	}
	return n
}

// assembleSnapshot turns per-source results into a Snapshot.
// Fields of unavailable sources stay nil.
func assembleSnapshot(takenAt time.Time, r sourceResults) Snapshot {
	s := Snapshot{TakenAt: takenAt.UTC()}

	if r.auroraOK {
		s.AuroraProbability = common.Ptr(r.aurora)
	}
	if r.planetaryOK {
		s.PlanetaryIndex = common.Ptr(r.planetary.Kp)
		s.PlanetaryIndexTimestamp = common.Ptr(r.planetary.Timestamp)
	}
	if r.regionalOK {
		reading := r.regional
		readings := make(map[Slot]SlotReading, len(reading.Readings))
		for slot, v := range reading.Readings {
			readings[slot] = v
		}
		reading.Readings = readings
		s.RegionalIndex = &reading
	}
	if r.weatherOK {
		s.CloudDensity = common.Ptr(r.weather.CloudDensity)
		s.WeatherDescription = common.Ptr(r.weather.Description)
		s.TemperatureKelvin = common.Ptr(r.weather.TemperatureKelvin)
		s.Humidity = common.Ptr(r.weather.Humidity)
	}

	return s
}
