package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

// Subscriber store backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type AppConfig struct {
	TelegramToken   string `validate:"required"`
	WeatherAPIToken string

	// MonitorInterval controls how often the K-index is checked.
	MonitorInterval time.Duration `validate:"gt=0"`
	TickTimeout     time.Duration `validate:"gt=0"`
	HTTPTimeout     time.Duration `validate:"gt=0"`

	LocationName string  `validate:"required"`
	LocationLat  float64 `validate:"latitude"`
	LocationLon  float64 `validate:"longitude"`

	RegionalStation  string `validate:"required"`
	WeatherStationID string `validate:"required"`

	SubscriberBackend string `validate:"oneof=file redis memory"`
	SubscribersFile   string `validate:"required_if=SubscriberBackend file"`
	RedisURL          string `validate:"required_if=SubscriberBackend redis"`
	RedisKey          string `validate:"required"`

	Port      string `validate:"required,numeric"`
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`
}

// Place is the configured location served by /aurora and the HTTP API.
func (c *AppConfig) Place() spaceweather.Place {
	return spaceweather.Place{
		Name:        c.LocationName,
		Coordinates: spaceweather.Coordinates{Lat: c.LocationLat, Lon: c.LocationLon},
	}
}

// Load reads configuration from the environment (and an optional .env file)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.WeatherAPIToken = os.Getenv("WEATHER_API_TOKEN")

	var err error
	if cfg.MonitorInterval, err = getenvDuration("MONITOR_INTERVAL", 3*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TickTimeout, err = getenvDuration("MONITOR_TICK_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	cfg.LocationName = getenvDefault("LOCATION_NAME", "Tartu, Estonia")
	if cfg.LocationLat, err = getenvFloat("LOCATION_LAT", 58.38); err != nil {
		return nil, err
	}
	if cfg.LocationLon, err = getenvFloat("LOCATION_LON", 26.72); err != nil {
		return nil, err
	}

	cfg.RegionalStation = getenvDefault("REGIONAL_STATION", "Tartu")
	cfg.WeatherStationID = getenvDefault("WEATHER_STATION_ID", "588409")

	cfg.SubscriberBackend = getenvDefault("SUBSCRIBER_BACKEND", BackendFile)
	cfg.SubscribersFile = getenvDefault("SUBSCRIBERS_FILE", "./chat_ids.json")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisKey = getenvDefault("REDIS_KEY", "aurora:subscribers")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
