package spaceweather

import (
	"strings"
	"time"
)

// Severity is the color class the regional magnetometer page attaches to a reading.
type Severity string

const (
	SeverityGreen   Severity = "Green"
	SeverityYellow  Severity = "Yellow"
	SeverityOrange  Severity = "Orange"
	SeverityRed     Severity = "Red"
	SeverityMaroon  Severity = "Maroon"
	SeverityUnknown Severity = "Unknown"
)

var severityByColor = map[string]Severity{
	"#00FF00": SeverityGreen,
	"#FFFF00": SeverityYellow,
	"#FFA500": SeverityOrange,
	"#FF0000": SeverityRed,
	"#800000": SeverityMaroon,
}

// SeverityFromColor maps a hex color code to a Severity.
// Codes outside the known palette map to SeverityUnknown.
func SeverityFromColor(code string) Severity {
	if s, ok := severityByColor[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return s
	}
	return SeverityUnknown
}

// Slot identifies one of the three readings in a regional index row.
type Slot string

const (
	SlotCurrent     Slot = "current"
	SlotNextHourMin Slot = "next_hour_min"
	SlotNextHourMax Slot = "next_hour_max"
)

// Slots lists the regional reading slots in display order.
var Slots = []Slot{SlotCurrent, SlotNextHourMin, SlotNextHourMax}

// SlotReading is one magnetometer value as printed on the page, with its color class.
type SlotReading struct {
	Value    string   `json:"value"`
	Severity Severity `json:"severity"`
}

// RegionalIndexReading is the local magnetic disturbance row for one station.
type RegionalIndexReading struct {
	Station  string               `json:"station"`
	Readings map[Slot]SlotReading `json:"readings"`
}

// Coordinates is a point on the globe in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place is the monitored location as shown to users.
type Place struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// PlanetaryIndex is the latest row of the planetary K-index table.
type PlanetaryIndex struct {
	Kp        float64
	Timestamp string
}

// WeatherReading is the current weather at the configured station.
type WeatherReading struct {
	CloudDensity      int
	Description       string
	TemperatureKelvin float64
	Humidity          int
}

// Snapshot is one point-in-time bundle of every monitored reading.
// A nil field means its source was unavailable for this cycle.
// Snapshots are not modified after BuildSnapshot returns them.
type Snapshot struct {
	TakenAt time.Time `json:"takenAt"` // always UTC

	AuroraProbability       *float64              `json:"auroraProbability,omitempty"`
	PlanetaryIndex          *float64              `json:"planetaryIndex,omitempty"`
	PlanetaryIndexTimestamp *string               `json:"planetaryIndexTimestamp,omitempty"`
	RegionalIndex           *RegionalIndexReading `json:"regionalIndex,omitempty"`
	CloudDensity            *int                  `json:"cloudDensity,omitempty"`
	WeatherDescription      *string               `json:"weatherDescription,omitempty"`
	TemperatureKelvin       *float64              `json:"temperatureKelvin,omitempty"`
	Humidity                *int                  `json:"humidity,omitempty"`
}

// ThresholdEvent records a planetary index reading that crossed the alert threshold.
type ThresholdEvent struct {
	Index  float64
	ReadAt time.Time
}
