package server

import (
	"errors"
	"log/slog"

	"bullion-backend/internal/ledger"
	"bullion-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

// errorHandler renders every error as {"error", "code", "details"?}.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			fe   *fiber.Error
			verr *ledger.ValidationError
			rerr *ledger.ReconciliationError
		)

		switch {
		case errors.As(err, &fe):
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
				"code":  codeFor(fe.Code),
			})

		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "validation failed",
				"code":    "validation_failed",
				"details": verr.Fields,
			})

		case errors.Is(err, ledger.ErrInvalidArgument):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "invalid_argument",
			})

		case errors.As(err, &rerr):
			log.Error("reconciliation failure", "nominee_id", rerr.NomineeID, "path", c.Path(), "err", rerr.Err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "nominee balance could not be reconciled; the change was not saved",
				"code":    "reconciliation_failure",
				"details": fiber.Map{"nomineeId": rerr.NomineeID},
			})

		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
				"code":  "not_found",
			})

		case store.IsRetryable(err):
			log.Warn("storage unavailable", "path", c.Path(), "err", err)
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "storage temporarily unavailable, retry",
				"code":  "storage_unavailable",
			})
		}

		log.Error("unexpected error", "method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "unexpected server error",
			"code":  "internal",
		})
	}
}

func codeFor(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusUnprocessableEntity:
		return "unprocessable"
	}
	if status >= 500 {
		return "internal"
	}
	return "error"
}
