// handlers/shop_routes.go
package handlers

import (
	"trophy-progression-system/middleware"
	"trophy-progression-system/models"
	"trophy-progression-system/services"

	"github.com/gofiber/fiber/v2"
)

type buyTitleRequest struct {
	Title string `json:"title" validate:"required"`
	Cost  *int64 `json:"cost" validate:"omitempty,min=0"`
}

type equipTitleRequest struct {
	Title string `json:"title" validate:"required"`
}

type createTitleRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Cost *int64 `json:"cost" validate:"required,min=0"`
}

type updateTitleRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=100"`
	Cost *int64  `json:"cost" validate:"omitempty,min=0"`
}

func SetupShopRoutes(app *fiber.App, shop *services.ShopService) {
	group := app.Group("/shop")

	// 🔓 Public
	group.Get("/titles", func(c *fiber.Ctx) error {
		titles, err := shop.ListTitles(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(titles)
	})

	// 🔐 User
	user := middleware.RequireUser()

	group.Post("/buy", user, func(c *fiber.Ctx) error {
		var req buyTitleRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		id := middleware.CurrentIdentity(c)
		res, err := shop.Purchase(c.UserContext(), id.UserID, req.Title, req.Cost)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	group.Post("/equip", user, func(c *fiber.Ctx) error {
		var req equipTitleRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		id := middleware.CurrentIdentity(c)
		res, err := shop.Equip(c.UserContext(), id.UserID, req.Title)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	})

	// 🛡️ Admin
	manage := group.Group("/manage", middleware.RequireRoles(models.RoleAdmin))

	manage.Post("/title", func(c *fiber.Ctx) error {
		var req createTitleRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		title, err := shop.CreateTitle(c.UserContext(), req.Name, *req.Cost)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(title)
	})

	manage.Put("/title/:id", func(c *fiber.Ctx) error {
		var req updateTitleRequest
		if err := parseBody(c, &req); err != nil {
			return respondError(c, err)
		}
		title, err := shop.UpdateTitle(c.UserContext(), c.Params("id"), req.Name, req.Cost)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(title)
	})

	manage.Delete("/title/:id", func(c *fiber.Ctx) error {
		if err := shop.DeleteTitle(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "title deleted"})
	})
}
