// handlers/ranking_routes.go
package handlers

import (
	"strconv"

	"trophy-progression-system/middleware"
	"trophy-progression-system/models"
	"trophy-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

type completeChallengeRequest struct {
	Day int `json:"day" validate:"required,min=1,max=31"`
}

type upsertChallengeRequest struct {
	Day          int    `json:"day" validate:"required,min=1,max=31"`
	Title        string `json:"title" validate:"required,max=200"`
	Points       *int64 `json:"points" validate:"required,min=0"`
	Kind         string `json:"kind" validate:"omitempty,oneof=ANY_TROPHY_IN_GAME TROPHY_COUNT OPEN"`
	TargetGameID string `json:"targetGameId"`
	TargetCount  int    `json:"targetCount" validate:"min=0"`
}

func SetupRankingRoutes(app *fiber.App, ranking *services.RankingService, challenges *services.ChallengeService) {
	// 🔓 Public
	app.Get("/ranking", func(c *fiber.Ctx) error {
		entries, err := ranking.GetRanking(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entries)
	})

	app.Get("/challenges", func(c *fiber.Ctx) error {
		defs, err := challenges.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(defs)
	})

	// 🔐 User
	app.Post("/ranking/complete", middleware.RequireUser(), func(c *fiber.Ctx) error {
		var req completeChallengeRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		id := middleware.CurrentIdentity(c)
		res, err := challenges.Complete(c.UserContext(), id.UserID, req.Day)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	// 🛡️ Admin
	manage := app.Group("/ranking/manage", middleware.RequireRoles(models.RoleAdmin))

	manage.Post("/challenge", func(c *fiber.Ctx) error {
		var req upsertChallengeRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		def, created, err := challenges.Upsert(c.UserContext(), services.ChallengeInput{
			Day:          req.Day,
			Title:        req.Title,
			Points:       *req.Points,
			Kind:         models.ChallengeKind(req.Kind),
			TargetGameID: req.TargetGameID,
			TargetCount:  req.TargetCount,
		})
		if err != nil {
			return respondError(c, err)
		}
		status := fiber.StatusOK
		if created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(def)
	})

	manage.Delete("/challenge/:day", func(c *fiber.Ctx) error {
		day, err := strconv.Atoi(c.Params("day"))
		if err != nil || day < services.MinChallengeDay || day > services.MaxChallengeDay {
			return respondError(c, services.BadRequest("day must be between 1 and 31"))
		}
		purged, err := challenges.Delete(c.UserContext(), day)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":           "challenge deleted",
			"day":               day,
			"purgedCompletions": purged,
		})
	})
}
