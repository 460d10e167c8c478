package routes

import (
	"errors"
	"log"
	"strings"

	"smartagri/config"
	"smartagri/handlers"
	"smartagri/middleware"
	"smartagri/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ForwardPrefixes are relayed to the upstream, evaluated in order.
var ForwardPrefixes = []string{
	"/api/crops",
	"/api/graphs",
	"/api/user-predictions",
}

// PrefixRoute binds a path prefix to its handler chain.
type PrefixRoute struct {
	Prefix   string
	Handlers []fiber.Handler
}

// NewApp builds the gateway: middleware, routes and the 404 fallback.
func NewApp(cfg *config.Config) (*fiber.App, error) {
	auth, err := handlers.NewDemoAuth(cfg)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "smartagri-gateway",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowCredentials: true,
	}))

	SetupRoutes(app, cfg, auth)
	return app, nil
}

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, cfg *config.Config, auth *handlers.DemoAuth) {
	// --- Authentication Routes ---
	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", auth.HandleLogin)
	authGroup.Get("/profile", auth.HandleProfile)
	authGroup.Post("/register", handlers.HandleRegister)

	// --- Forwarded Routes ---
	forwarder := handlers.NewForwarder(cfg)
	// A prefix covers itself and its subtree only, so /api/cropsXYZ falls
	// through to the 404 handler.
	for _, r := range ForwardTable(cfg, forwarder) {
		app.All(r.Prefix, r.Handlers...)
		app.All(r.Prefix+"/*", r.Handlers...)
	}

	// --- Gateway Info ---
	app.Get("/health", handlers.HandleHealth(cfg.UpstreamURL))
	app.Get("/", handlers.HandleInfo(cfg.Port, cfg.UpstreamURL))

	app.Use(handlers.HandleNotFound)

	log.Printf("Forwarding %s -> %s", strings.Join(ForwardPrefixes, ", "), cfg.UpstreamURL)
}

// ForwardTable is the ordered (prefix, handler) list for relayed routes.
func ForwardTable(cfg *config.Config, forwarder *handlers.Forwarder) []PrefixRoute {
	table := make([]PrefixRoute, 0, len(ForwardPrefixes))
	for _, prefix := range ForwardPrefixes {
		var chain []fiber.Handler
		if cfg.RequireAuthForForward {
			chain = append(chain, middleware.BearerRequired)
		}
		chain = append(chain, forwarder.HandleForward)
		table = append(table, PrefixRoute{Prefix: prefix, Handlers: chain})
	}
	return table
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	log.Printf("[GATEWAY] %s %s %s failed: %v", middleware.GetRequestID(c), c.Method(), c.Path(), err)
	return c.Status(code).JSON(models.Fail(code, err.Error()))
}
