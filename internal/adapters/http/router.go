package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/mapcal/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	with := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1.Get("/methods", with(ListMethodsHandler(deps)))
	v1.Get("/methods/:name/required-points", with(RequiredPointsHandler(deps)))

	v1.Get("/maps", with(ListMapsHandler(deps)))
	v1.Post("/maps", with(CreateMapHandler(deps)))
	v1.Post("/maps/recalibrate", with(RecalibrateHandler(deps)))
	v1.Get("/maps/:id", with(GetMapHandler(deps)))
	v1.Delete("/maps/:id", with(DeleteMapHandler(deps)))
	v1.Get("/maps/:id/points", with(GetPointsHandler(deps)))
	v1.Put("/maps/:id/points", with(SetPointsHandler(deps)))
	v1.Delete("/maps/:id/points", with(ClearPointsHandler(deps)))
	v1.Put("/maps/:id/method", with(SetMethodHandler(deps)))
	v1.Get("/maps/:id/projection", with(GetProjectionHandler(deps)))
	v1.Put("/maps/:id/projection", with(SetProjectionHandler(deps)))
	v1.Post("/maps/:id/calibrate", with(CalibrateHandler(deps)))
	v1.Get("/maps/:id/bounds", with(BoundsHandler(deps)))
	v1.Get("/maps/:id/pixel-to-geo", with(PixelToGeoHandler(deps)))
	v1.Get("/maps/:id/geo-to-pixel", with(GeoToPixelHandler(deps)))
	v1.Get("/maps/:id/footprint", with(FootprintHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
