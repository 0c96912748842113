package proxy

import (
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configures the proxy HTTP application.
type Options struct {
	StaticDir string              // StaticDir is served at "/" when set.
	Logger    *slog.Logger        // Logger for access and error logs.
	Metrics   *metrics.Metrics    // Metrics recorded per request, may be nil.
	Gatherer  prometheus.Gatherer // Gatherer exposed on /metrics, nil disables the endpoint.
}

// allowHeaders lists the request headers browsers may send cross-origin.
const allowHeaders = "Origin, X-Requested-With, Content-Type, Accept, Authorization"

// NewApp builds the fiber application serving the proxy endpoints.
func NewApp(svc Service, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Meridian Proxy",
		BodyLimit:             1024 * 1024, // 1 MB max request body
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	SetupRoutes(app, svc, opts)

	return app
}

// SetupRoutes registers middleware and the geocode, route and export endpoints.
func SetupRoutes(app *fiber.App, svc Service, opts Options) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: allowHeaders,
	}))
	app.Use(AccessLogMiddleware(log, opts.Metrics))

	app.Get("/healthz", HealthHandler())
	if opts.Gatherer != nil {
		app.Get("/metrics", MetricsHandler(opts.Gatherer))
	}

	app.Get("/geocode", GeocodeHandler(svc, log))
	app.Post("/route", RouteHandler(svc, log))
	app.Post("/export", ExportHandler(svc, log))

	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir)
	}
}
