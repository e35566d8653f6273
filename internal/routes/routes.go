package routes

import (
	"time"

	"github.com/dmolenda/achievehub/internal/config"
	"github.com/dmolenda/achievehub/internal/handlers"
	"github.com/dmolenda/achievehub/internal/middleware"
	"github.com/dmolenda/achievehub/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Apps         *handlers.AppHandler
	Lists        *handlers.ListHandler
	Achievements *handlers.AchievementHandler
	Players      *handlers.PlayerHandler
	ApiKeys      *handlers.ApiKeyHandler
	KeyService   *services.ApiKeyService
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), h.Auth.Logout)

	// Key resolution — public, used by game clients to bootstrap a session
	// from the raw key alone.
	api.Get("/apikeys", h.ApiKeys.ResolveKeyData)

	// Portal routes (JWT required): apps, lists and key management.
	jwt := middleware.JWTProtected(cfg)

	api.Post("/apps", jwt, h.Apps.Create)
	api.Get("/apps", jwt, h.Apps.List)
	api.Get("/apps/:appId", jwt, h.Apps.Get)
	api.Patch("/apps/:appId", jwt, h.Apps.Update)
	api.Delete("/apps/:appId", jwt, h.Apps.Delete)

	api.Get("/apps/:appId/lists", jwt, h.Lists.ListByApp)

	api.Post("/lists", jwt, h.Lists.Create)
	api.Patch("/lists/:listId", jwt, h.Lists.Update)
	api.Delete("/lists/:listId", jwt, h.Lists.Delete)

	api.Post("/lists/:listId/apikeys", jwt, h.ApiKeys.Create)
	api.Get("/lists/:listId/apikeys", jwt, h.ApiKeys.ListByList)
	api.Delete("/apikeys/:id", jwt, h.ApiKeys.Revoke)

	// Game-facing routes (x-api-key required, scoped to the key's list). The
	// JWT portal routes above are registered first and terminate before these
	// group middlewares run.
	lists := api.Group("/lists/:listId", middleware.RequireAPIKey(h.KeyService), middleware.RequireListMatch())
	lists.Get("", h.Lists.Get)
	lists.Get("/achievements", h.Achievements.List)
	lists.Post("/achievements", h.Achievements.Create)
	lists.Put("/achievements", h.Achievements.BulkReplace)
	// Registered before :id so "reorder" is not captured as an ID.
	lists.Patch("/achievements/reorder", h.Achievements.Reorder)
	lists.Patch("/achievements/:id", h.Achievements.Update)
	lists.Delete("/achievements/:id", h.Achievements.Delete)
	lists.Post("/achievements/:id/uploadImage", h.Achievements.UploadImage)
	lists.Get("/players/:playerId", h.Lists.PlayerView)

	players := api.Group("/apps/:appId/players", middleware.RequireAPIKey(h.KeyService), middleware.RequireAppMatch())
	players.Post("", h.Players.CreateOrFetch)
	players.Get("", h.Players.ListByApp)
	players.Get("/:pId", h.Players.Get)
	players.Patch("/:pId/progress", h.Players.UpdateProgress)
	players.Delete("/:pId", h.Players.Delete)
}
