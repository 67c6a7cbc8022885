package handler

import (
	"github.com/gofiber/fiber/v2"

	"dms/internal/model"
)

// ListRoles returns the fixed role catalogue.
//
// @Summary  List roles
// @Tags     roles
// @Produce  json
// @Success  200 {array} model.RoleInfo
// @Router   /roles [get]
func ListRoles() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(model.Roles())
	}
}
