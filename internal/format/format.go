// Package format renders snapshots and static replies as chat text.
// Functions here are pure; HTML output uses Telegram's tag subset.
package format

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/i474232898/aurora-bot/internal/common"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

const (
	notAvailable = "n/a"
	kelvinOffset = 273.15
)

var severityEmoji = map[spaceweather.Severity]string{
	spaceweather.SeverityGreen:  "🟩",
	spaceweather.SeverityYellow: "🟨",
	spaceweather.SeverityOrange: "🟧",
	spaceweather.SeverityRed:    "🟥",
	spaceweather.SeverityMaroon: "🟫",
}

var slotLabels = map[spaceweather.Slot]string{
	spaceweather.SlotCurrent:     "Current RX",
	spaceweather.SlotNextHourMin: "Next Hour Min RX",
	spaceweather.SlotNextHourMax: "Next Hour Max RX",
}

// SeverityEmoji returns the colored square for s, or ❓ for unknown severities.
func SeverityEmoji(s spaceweather.Severity) string {
	if e, ok := severityEmoji[s]; ok {
		return e
	}
	return "❓"
}

// Number prints v without trailing zeros, e.g. 4 → "4", 4.33 → "4.33".
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Celsius converts Kelvin to Celsius rounded to two decimals.
func Celsius(kelvin float64) float64 {
	return math.Round((kelvin-kelvinOffset)*100) / 100
}

// Alert is the threshold notification text (HTML).
func Alert(kp float64) string {
	return fmt.Sprintf("⚠️ KP-Index is now <b>%s</b>. Check /aurora for detailed info!.\n\n", Number(kp))
}

// Digest renders the full aurora report for place (HTML).
// Unavailable values print as "n/a".
func Digest(s spaceweather.Snapshot, place spaceweather.Place) string {
	var b strings.Builder

	b.WriteString("📊 <b>Aurora Data:</b>\n")
	if s.PlanetaryIndexTimestamp != nil {
		fmt.Fprintf(&b, "🕒 <b>Timestamp:</b> %s UTC\n\n", html.EscapeString(*s.PlanetaryIndexTimestamp))
	} else {
		fmt.Fprintf(&b, "🕒 <b>Timestamp:</b> %s\n\n", notAvailable)
	}
	fmt.Fprintf(&b, "🌍 <b>Location:</b> %s\n", html.EscapeString(place.Name))
	fmt.Fprintf(&b, "📍 <b>Coordinates:</b> [%s, %s]\n\n",
		Number(place.Coordinates.Lat), Number(place.Coordinates.Lon))

	b.WriteString("🧲 <b>Magnetic Field Data:</b>\n\n")
	if s.RegionalIndex != nil {
		for _, slot := range spaceweather.Slots {
			r, ok := s.RegionalIndex.Readings[slot]
			value := notAvailable
			if ok && r.Value != "" {
				value = html.EscapeString(r.Value) + " nT"
			}
			fmt.Fprintf(&b, "  • <b>%s:</b> %s | Colour: %s\n\n", slotLabels[slot], value, SeverityEmoji(r.Severity))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("  • Magnetic field data is currently unavailable.\n\n\n")
	}

	fmt.Fprintf(&b, "🌌 <b>Aurora Probability:</b> %s\n\n", percent(s.AuroraProbability))
	fmt.Fprintf(&b, "⚠️ <b>KP Index:</b> %s\n\n", optNumber(s.PlanetaryIndex))

	fmt.Fprintf(&b, "🌤️ <b>Weather:</b> %s\n", html.EscapeString(common.ValueOr(s.WeatherDescription, notAvailable)))
	if s.TemperatureKelvin != nil {
		fmt.Fprintf(&b, "🌡️ <b>Temperature:</b> %s°C\n", Number(Celsius(*s.TemperatureKelvin)))
	} else {
		fmt.Fprintf(&b, "🌡️ <b>Temperature:</b> %s\n", notAvailable)
	}
	fmt.Fprintf(&b, "☁️ <b>Clouds density:</b> %s\n", intPercent(s.CloudDensity))
	fmt.Fprintf(&b, "💧 <b>Humidity:</b> %s\n", intPercent(s.Humidity))

	return b.String()
}

func optNumber(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return Number(*v)
}

func percent(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return Number(*v) + "%"
}

func intPercent(v *int) string {
	if v == nil {
		return notAvailable
	}
	return strconv.Itoa(*v) + "%"
}

// Start is the greeting for /start (plain).
func Start() string {
	return "Hello! I'm AuroraBot. Use /help to see what I can do."
}

// Help describes the bot and its commands (plain).
func Help(threshold float64) string {
	return "This bot monitors the KP index and sends notifications to subscribed " +
		"users when the KP index is " + Number(threshold) + " or greater. The bot also provides " +
		"information about the current geomagnetic activity, aurora probability, " +
		"and weather data.\n\n" +
		"Commands:\n\n" +
		"  /start - Start the bot\n" +
		"  /help - Show this help message\n" +
		"  /resources - Show resources used by the bot\n" +
		"  /aurora - Show aurora information\n" +
		"  /subscribe - Subscribe to notifications\n" +
		"  /unsubscribe - Unsubscribe from notifications\n"
}

// Resources lists the upstream data sources (HTML).
func Resources() string {
	return "📚 <b>Resources:</b>\n\n" +
		"  •<b>Aurora probability data:</b>\n https://services.swpc.noaa.gov/json/ovation_aurora_latest.json\n" +
		"  •<b>Planetary KP-Index data:</b>\n https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json\n" +
		"  •<b>Geomagnetic activity data:</b>\n https://aurorasnow.fmi.fi/public_service/magforecast_en.html\n" +
		"  •<b>Weather data:</b>\n https://api.openweathermap.org\n"
}
