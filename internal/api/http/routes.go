package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/aurora-bot/internal/spaceweather"
)

var validate = validator.New()

// SnapshotBuilder produces a snapshot for a coordinate.
type SnapshotBuilder interface {
	BuildSnapshot(ctx context.Context, at spaceweather.Coordinates) spaceweather.Snapshot
}

// IndexReader fetches the latest planetary K-index.
type IndexReader interface {
	ReadIndexOnly(ctx context.Context) (float64, bool)
}

// SubscriberLister reads the subscriber set.
type SubscriberLister interface {
	List(ctx context.Context) ([]int64, error)
}

// Deps are the services exposed over HTTP.
type Deps struct {
	Snapshots   SnapshotBuilder
	Index       IndexReader
	Subscribers SubscriberLister
	Place       spaceweather.Place
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "aurora-bot",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/snapshot", func(c *fiber.Ctx) error {
		at, err := parseCoordinatesQuery(c, deps.Place.Coordinates)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot := deps.Snapshots.BuildSnapshot(c.UserContext(), at)
		return c.JSON(snapshot)
	})

	v1.Get("/kp", func(c *fiber.Ctx) error {
		kp, ok := deps.Index.ReadIndexOnly(c.UserContext())
		if !ok {
			return fiber.NewError(fiber.StatusServiceUnavailable, "kp index is currently unavailable")
		}
		return c.JSON(fiber.Map{"kp": kp})
	})

	v1.Get("/subscribers", func(c *fiber.Ctx) error {
		ids, err := deps.Subscribers.List(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read subscribers")
		}
		return c.JSON(fiber.Map{"count": len(ids)})
	})
}

// coordinatesQuery holds the optional lat/lon query parameters.
type coordinatesQuery struct {
	Lat float64 `validate:"latitude"`
	Lon float64 `validate:"longitude"`
}

// parseCoordinatesQuery returns def when neither lat nor lon is given.
func parseCoordinatesQuery(c *fiber.Ctx, def spaceweather.Coordinates) (spaceweather.Coordinates, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return def, nil
	}
	if latStr == "" || lonStr == "" {
		return spaceweather.Coordinates{}, errors.New("lat and lon must be given together")
	}

	var q coordinatesQuery
	var err error
	if q.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return spaceweather.Coordinates{}, errors.New("lat must be a number")
	}
	if q.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return spaceweather.Coordinates{}, errors.New("lon must be a number")
	}

	if err := validate.Struct(q); err != nil {
		return spaceweather.Coordinates{}, err
	}

	return spaceweather.Coordinates{Lat: q.Lat, Lon: q.Lon}, nil
}
