package proxy

import (
	"errors"
	"log/slog"

	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// newError writes {"error": message} with the given status.
func newError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, msg)
}

// errFromService maps missing input to 400 and any upstream or network failure to 500.
func errFromService(c *fiber.Ctx, log *slog.Logger, err error) error {
	if service.IsValidation(err) {
		return errBadRequest(c, err.Error())
	}

	ctx := c.UserContext()
	log.ErrorContext(ctx, "Proxy request failed",
		"path", c.Path(), "request_id", requestIDFromCtx(ctx), "error", err)

	return errInternal(c, err.Error())
}

// errorHandler renders errors that escaped the handlers (unknown routes, panics) as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	return newError(c, code, err.Error())
}
