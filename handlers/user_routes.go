// handlers/user_routes.go
package handlers

import (
	"trophy-progression-system/middleware"
	"trophy-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, ranking *services.RankingService, users *services.UserDirectory) {
	app.Get("/users/search", func(c *fiber.Ctx) error {
		res, err := users.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 50))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	app.Get("/users/me/stats", middleware.RequireUser(), func(c *fiber.Ctx) error {
		id := middleware.CurrentIdentity(c)
		stats, err := ranking.Stats(c.UserContext(), id.UserID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})
}
