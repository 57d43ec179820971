// handlers/trophy_routes.go
package handlers

import (
	"trophy-progression-system/middleware"
	"trophy-progression-system/models"
	"trophy-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

type trackRequest struct {
	GameID    string `json:"gameId" validate:"required"`
	IsTracked *bool  `json:"isTracked" validate:"required"`
}

type toggleRequest struct {
	GameID     string `json:"gameId" validate:"required"`
	TrophyName string `json:"trophyName" validate:"required"`
}

type toggleAllRequest struct {
	GameID         string   `json:"gameId" validate:"required"`
	AllTrophyNames []string `json:"allTrophyNames"`
	MarkAll        *bool    `json:"markAll" validate:"required"`
}

type createTrophyRequest struct {
	GameID      string `json:"gameId" validate:"required"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Difficulty  string `json:"difficulty" validate:"omitempty,oneof=bronze silver gold"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	IsCustom    *bool  `json:"isCustom"`
}

type editTrophyRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Difficulty  *string `json:"difficulty" validate:"omitempty,oneof=bronze silver gold"`
	ImageURL    *string `json:"imageUrl"`
}

func SetupTrophyRoutes(app *fiber.App, trophies *services.TrophyService, catalog *services.CatalogService) {
	group := app.Group("/trophies")

	// 🔓 Public
	group.Get("/list/:gameId", func(c *fiber.Ctx) error {
		entries, err := catalog.ListForGame(c.UserContext(), c.Params("gameId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entries)
	})

	// 🔐 User
	user := middleware.RequireUser()

	group.Get("/my-progress", user, func(c *fiber.Ctx) error {
		id := middleware.CurrentIdentity(c)
		progress, err := trophies.GetProgress(c.UserContext(), id.UserID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(progress)
	})

	group.Post("/track", user, func(c *fiber.Ctx) error {
		var req trackRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		id := middleware.CurrentIdentity(c)
		res, err := trophies.SetTracked(c.UserContext(), id.UserID, req.GameID, *req.IsTracked)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	group.Post("/toggle", user, func(c *fiber.Ctx) error {
		var req toggleRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		id := middleware.CurrentIdentity(c)
		res, err := trophies.ToggleTrophy(c.UserContext(), id.UserID, req.GameID, req.TrophyName)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	group.Post("/toggle-all", user, func(c *fiber.Ctx) error {
		var req toggleAllRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		id := middleware.CurrentIdentity(c)
		res, err := trophies.ToggleAll(c.UserContext(), id.UserID, req.GameID, req.AllTrophyNames, *req.MarkAll)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	group.Post("/create", user, func(c *fiber.Ctx) error {
		var req createTrophyRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		entry, err := catalog.Create(c.UserContext(), middleware.CurrentIdentity(c), services.CreateTrophyInput{
			GameID:      req.GameID,
			Name:        req.Name,
			Description: req.Description,
			Difficulty:  req.Difficulty,
			ImageURL:    req.ImageURL,
			IsCustom:    req.IsCustom,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	// 🛡️ Admin
	admin := middleware.RequireRoles(models.RoleAdmin)

	group.Put("/edit/:id", admin, func(c *fiber.Ctx) error {
		var req editTrophyRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		entry, err := catalog.Update(c.UserContext(), c.Params("id"), services.UpdateTrophyInput{
			Name:        req.Name,
			Description: req.Description,
			Difficulty:  req.Difficulty,
			ImageURL:    req.ImageURL,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(entry)
	})

	group.Delete("/delete/:id", admin, func(c *fiber.Ctx) error {
		if err := catalog.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	group.Post("/admin/reseed", admin, func(c *fiber.Ctx) error {
		summary, err := catalog.Reseed(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(summary)
	})
}
