package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/i474232898/aurora-bot/internal/observability"
	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

const (
	openWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

	// DefaultWeatherStation is the OpenWeatherMap city id for Tartu.
	DefaultWeatherStation = "588409"
)

var (
	errNoAPIKey      = errors.New("openweather api key is not configured")
	errMissingFields = errors.New("weather payload is missing fields")
)

// OpenWeatherSource implements spaceweather.WeatherSource for OpenWeatherMap.
type OpenWeatherSource struct {
	httpSource
	apiKey    string
	stationID string
	baseURL   string
}

func NewOpenWeatherSource(client *http.Client, apiKey, stationID string, logger *slog.Logger, metrics *observability.Metrics) *OpenWeatherSource {
	if stationID == "" {
		stationID = DefaultWeatherStation
	}
	return &OpenWeatherSource{
		httpSource: newHTTPSource("weather", client, logger, metrics),
		apiKey:     apiKey,
		stationID:  stationID,
		baseURL:    openWeatherURL,
	}
}

func (s *OpenWeatherSource) CurrentWeather(ctx context.Context) (spaceweather.WeatherReading, bool) {
	if s.apiKey == "" {
		s.unavailable(errNoAPIKey)
		return spaceweather.WeatherReading{}, false
	}

	values := url.Values{}
	values.Set("id", s.stationID)
	values.Set("appid", s.apiKey)

	body, err := s.get(ctx, fmt.Sprintf("%s?%s", s.baseURL, values.Encode()))
	if err != nil {
		s.unavailable(err)
		return spaceweather.WeatherReading{}, false
	}

	reading, err := parseOpenWeather(body)
	if err != nil {
		s.unavailable(err)
		return spaceweather.WeatherReading{}, false
	}

	s.available()
	return reading, true
}

// parseOpenWeather extracts clouds, description, temperature (Kelvin) and humidity.
// Every field is required.
func parseOpenWeather(body []byte) (spaceweather.WeatherReading, error) {
	var payload struct {
		Clouds struct {
			All *int `json:"all"`
		} `json:"clouds"`
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity *int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return spaceweather.WeatherReading{}, fmt.Errorf("decode weather: %w", err)
	}

	if payload.Clouds.All == nil || payload.Main.Temp == nil || payload.Main.Humidity == nil || len(payload.Weather) == 0 {
		return spaceweather.WeatherReading{}, errMissingFields
	}

	return spaceweather.WeatherReading{
		CloudDensity:      *payload.Clouds.All,
		Description:       payload.Weather[0].Description,
		TemperatureKelvin: *payload.Main.Temp,
		Humidity:          *payload.Main.Humidity,
	}, nil
}
