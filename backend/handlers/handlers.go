package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/gohye-progression/backend/models"
	"github.com/ellavondegurechaff/gohye-progression/backend/utils"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/rebirth"
	"github.com/ellavondegurechaff/gohye-progression/progression/services"
)

// HealthFunc reports whether a dependency is reachable.
type HealthFunc func(ctx context.Context) error

// App holds the services behind the HTTP surface.
type App struct {
	Levels       *leveling.Service
	Rebirths     *rebirth.Service
	Quests       *services.QuestService
	Tracker      *services.QuestTracker
	MainQuests   *services.MainQuestEngine
	Leaderboards *services.LeaderboardService
	Profiles     *services.ProfileService
	Health       map[string]HealthFunc
	Version      string
}

// userID validates the :userID path parameter, writing the error response
// itself when it is unusable.
func userID(c *fiber.Ctx) (string, bool, error) {
	id := c.Params("userID")
	if errs := utils.ValidateUserID(id); len(errs) > 0 {
		return "", false, utils.HandleValidationErrors(c, errs)
	}
	return id, true, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

func HealthCheck(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := models.NewHealthCheck(app.Version)
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		for name, check := range app.Health {
			if err := check(ctx); err != nil {
				slog.Warn("Health check failed",
					slog.String("type", "http"),
					slog.String("component", name),
					slog.Any("error", err))
				health.AddComponent(name, "unhealthy", err.Error())
				continue
			}
			health.AddComponent(name, "healthy", "")
		}

		status := fiber.StatusOK
		if health.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

// =============================================================================
// LEVELS
// =============================================================================

func GetLevel(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		info := app.Levels.GetLevel(c.UserContext(), id)
		return utils.SendOutcome(c, info.Outcome, info)
	}
}

func AddExp(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		var req models.AddExpRequest
		if err := parseBody(c, &req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateAddExpRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}
		if req.Source == "" {
			req.Source = "api"
		}

		result := app.Levels.AddExp(c.UserContext(), id, req.Amount, req.Source)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

func ListLevelMilestones(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		list := app.Levels.ListMilestones(c.UserContext(), id)
		return utils.SendOutcome(c, list.Outcome, list)
	}
}

func ClaimLevelMilestone(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		threshold, err := strconv.Atoi(c.Params("threshold"))
		if err != nil {
			return utils.SendBadRequest(c, "Invalid milestone level", nil)
		}
		result := app.Levels.ClaimMilestone(c.UserContext(), id, threshold)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

func ClaimAllLevelMilestones(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		result := app.Levels.ClaimAllMilestones(c.UserContext(), id)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

// =============================================================================
// REBIRTH
// =============================================================================

func RebirthStatus(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		status := app.Rebirths.GetStatus(c.UserContext(), id)
		return utils.SendOutcome(c, status.Outcome, status)
	}
}

func PerformRebirth(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		var req models.RebirthRequest
		if err := parseBody(c, &req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		result := app.Rebirths.PerformRebirth(c.UserContext(), id, req.KeepItemID)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

func ListRebirthMilestones(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		list := app.Rebirths.ListRebirthMilestones(c.UserContext(), id)
		return utils.SendOutcome(c, list.Outcome, list)
	}
}

func ClaimRebirthMilestone(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		threshold, err := strconv.Atoi(c.Params("threshold"))
		if err != nil {
			return utils.SendBadRequest(c, "Invalid rebirth milestone", nil)
		}
		result := app.Rebirths.ClaimRebirthMilestone(c.UserContext(), id, threshold)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

func ClaimAllRebirthMilestones(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		result := app.Rebirths.ClaimAllRebirthMilestones(c.UserContext(), id)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

// =============================================================================
// QUESTS
// =============================================================================

func Track(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		var req models.TrackRequest
		if err := parseBody(c, &req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateTrackRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}
		if req.Increment == 0 {
			req.Increment = 1
		}

		result := app.Tracker.Track(c.UserContext(), id, req.TrackingType, req.Increment)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

func TrackCommand(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		var req models.CommandRequest
		if err := parseBody(c, &req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateCommandRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		result := app.Tracker.TrackCommand(c.UserContext(), id, req.Command)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

func SetQuestProgress(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		var req models.QuestProgressRequest
		if err := parseBody(c, &req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateQuestProgressRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		result := app.Tracker.UpdateQuestProgressDirect(c.UserContext(), id, req.TrackingType, req.Value, req.Scope)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

func QuestStatus(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		status := app.Quests.GetQuestStatus(c.UserContext(), id)
		return utils.SendOutcome(c, status.Outcome, status)
	}
}

func ClaimQuests(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		result := app.Quests.ClaimQuestRewards(c.UserContext(), id)
		return utils.SendOutcome(c, result.Outcome, result)
	}
}

func MainQuestStatus(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		status := app.MainQuests.GetCurrentQuestProgress(c.UserContext(), id)
		return utils.SendOutcome(c, status.Outcome, status)
	}
}

func Profile(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := userID(c)
		if !ok {
			return err
		}
		profile := app.Profiles.GetProfile(c.UserContext(), id)
		return utils.SendOutcome(c, profile.Outcome, profile)
	}
}

// =============================================================================
// LEADERBOARDS
// =============================================================================

func Leaderboard(app *App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 0)

		var board services.Leaderboard
		switch c.Params("kind") {
		case services.BoardLevel:
			board = app.Leaderboards.TopByLevel(c.UserContext(), limit)
		case services.BoardRebirth:
			board = app.Leaderboards.TopByRebirth(c.UserContext(), limit)
		default:
			return utils.SendBadRequest(c, "Unknown leaderboard", map[string]string{"kind": "must be level or rebirth"})
		}
		return utils.SendOutcome(c, board.Outcome, board)
	}
}
