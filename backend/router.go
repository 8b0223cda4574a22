// Package backend exposes the progression services as a JSON API.
package backend

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ellavondegurechaff/gohye-progression/backend/handlers"
	"github.com/ellavondegurechaff/gohye-progression/backend/middleware"
	"github.com/ellavondegurechaff/gohye-progression/backend/utils"
)

type Options struct {
	APIKey             string
	AllowOrigins       string
	RateLimitPerMinute int
}

// New builds the fiber app. ctx bounds background helpers such as the rate
// limiter janitor.
func New(ctx context.Context, app *handlers.App, opts Options) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:      "GoHYE Progression API",
		ServerHeader: "GoHYE-Progression",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	server.Use(recover.New())
	server.Use(middleware.RequestID())
	server.Use(middleware.SecurityHeaders())
	server.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	if opts.AllowOrigins != "" {
		server.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowOrigins,
			AllowMethods: "GET,POST,PUT,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept," + middleware.APIKeyHeader + "," + middleware.RequestIDHeader,
		}))
	}
	server.Use(middleware.LoggingMiddleware())

	setupRoutes(ctx, server, app, opts)
	return server
}

func setupRoutes(ctx context.Context, server *fiber.App, app *handlers.App, opts Options) {
	server.Get("/health", handlers.HealthCheck(app))

	api := server.Group("/api/v1")
	api.Use(middleware.APIKeyRequired(opts.APIKey))

	limit := middleware.RateLimit(ctx, opts.RateLimitPerMinute, time.Minute)

	api.Get("/leaderboards/:kind", handlers.Leaderboard(app))

	users := api.Group("/users/:userID")

	users.Get("/profile", handlers.Profile(app))
	users.Get("/level", handlers.GetLevel(app))
	users.Post("/exp", limit, handlers.AddExp(app))
	users.Get("/milestones/level", handlers.ListLevelMilestones(app))
	users.Post("/milestones/level/claim", limit, handlers.ClaimAllLevelMilestones(app))
	users.Post("/milestones/level/:threshold/claim", limit, handlers.ClaimLevelMilestone(app))

	users.Get("/rebirth", handlers.RebirthStatus(app))
	users.Post("/rebirth", limit, handlers.PerformRebirth(app))
	users.Get("/milestones/rebirth", handlers.ListRebirthMilestones(app))
	users.Post("/milestones/rebirth/claim", limit, handlers.ClaimAllRebirthMilestones(app))
	users.Post("/milestones/rebirth/:threshold/claim", limit, handlers.ClaimRebirthMilestone(app))

	users.Post("/track", limit, handlers.Track(app))
	users.Post("/commands", limit, handlers.TrackCommand(app))
	users.Put("/quests/progress", limit, handlers.SetQuestProgress(app))
	users.Get("/quests", handlers.QuestStatus(app))
	users.Post("/quests/claim", limit, handlers.ClaimQuests(app))
	users.Get("/main-quest", handlers.MainQuestStatus(app))

	server.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return utils.SendError(c, fiber.StatusNotFound, "NOT_FOUND", "The requested endpoint does not exist", nil)
	})
}
