package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pageQuery(c *fiber.Ctx) (limit, offset int, code string) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, "INVALID_LIMIT"
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, "INVALID_OFFSET"
	}
	return limit, offset, ""
}
