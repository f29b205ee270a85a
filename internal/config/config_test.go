package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"TELEGRAM_BOT_TOKEN", "WEATHER_API_TOKEN",
	"MONITOR_INTERVAL", "MONITOR_TICK_TIMEOUT", "HTTP_TIMEOUT",
	"LOCATION_NAME", "LOCATION_LAT", "LOCATION_LON",
	"REGIONAL_STATION", "WEATHER_STATION_ID",
	"SUBSCRIBER_BACKEND", "SUBSCRIBERS_FILE", "REDIS_URL", "REDIS_KEY",
	"PORT", "LOG_LEVEL", "LOG_FORMAT",
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"TELEGRAM_BOT_TOKEN": "123:abc"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Empty(t, cfg.WeatherAPIToken)
	assert.Equal(t, 3*time.Hour, cfg.MonitorInterval)
	assert.Equal(t, time.Minute, cfg.TickTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "Tartu, Estonia", cfg.Place().Name)
	assert.Equal(t, 58.38, cfg.Place().Coordinates.Lat)
	assert.Equal(t, 26.72, cfg.Place().Coordinates.Lon)
	assert.Equal(t, "Tartu", cfg.RegionalStation)
	assert.Equal(t, "588409", cfg.WeatherStationID)
	assert.Equal(t, BackendFile, cfg.SubscriberBackend)
	assert.Equal(t, "./chat_ids.json", cfg.SubscribersFile)
	assert.Equal(t, "aurora:subscribers", cfg.RedisKey)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"TELEGRAM_BOT_TOKEN": "t",
		"MONITOR_INTERVAL":   "30m",
		"LOCATION_NAME":      "Tromsø",
		"LOCATION_LAT":       "69.65",
		"LOCATION_LON":       "18.96",
		"SUBSCRIBER_BACKEND": "redis",
		"REDIS_URL":          "redis://localhost:6379/0",
		"LOG_FORMAT":         "text",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.MonitorInterval)
	assert.Equal(t, "Tromsø", cfg.LocationName)
	assert.Equal(t, 69.65, cfg.LocationLat)
	assert.Equal(t, BackendRedis, cfg.SubscriberBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{}},
		{"bad interval", map[string]string{"TELEGRAM_BOT_TOKEN": "t", "MONITOR_INTERVAL": "often"}},
		{"negative interval", map[string]string{"TELEGRAM_BOT_TOKEN": "t", "MONITOR_INTERVAL": "-1h"}},
		{"bad latitude", map[string]string{"TELEGRAM_BOT_TOKEN": "t", "LOCATION_LAT": "95"}},
		{"unparsable longitude", map[string]string{"TELEGRAM_BOT_TOKEN": "t", "LOCATION_LON": "east"}},
		{"unknown backend", map[string]string{"TELEGRAM_BOT_TOKEN": "t", "SUBSCRIBER_BACKEND": "sqlite"}},
		{"redis without url", map[string]string{"TELEGRAM_BOT_TOKEN": "t", "SUBSCRIBER_BACKEND": "redis"}},
		{"bad log level", map[string]string{"TELEGRAM_BOT_TOKEN": "t", "LOG_LEVEL": "verbose"}},
		{"bad port", map[string]string{"TELEGRAM_BOT_TOKEN": "t", "PORT": "http"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
