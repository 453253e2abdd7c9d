// Package httpx holds the request helpers shared by the HTTP handlers.
package httpx

import (
	"strconv"

	"bullion-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// ParamID reads a positive numeric path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 0)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(id), nil
}

// DateRange reads the optional startDate/endDate query parameters.
func DateRange(c *fiber.Ctx) (ledger.DateRange, error) {
	return ledger.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
}

// Body decodes the JSON request body into dst.
func Body(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "request body is required")
	}
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}
