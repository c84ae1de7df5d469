package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/teamhive/hive-go-api/internal/apperrors"
)

func uintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperrors.Validation("invalid " + name)
	}
	return uint(parsed), nil
}
