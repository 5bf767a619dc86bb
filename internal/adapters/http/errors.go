package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapcal/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, conflict, unprocessable, ...
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errUnprocessable returns a 422 error.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, 422, "unprocessable", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "unavailable", msg)
}

// mapError translates a service error into an API error response.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrMapNotFound):
		return errNotFound(c, "map not found")
	case errors.Is(err, domain.ErrNotCalibrated):
		return errConflict(c, "map is not calibrated")
	case errors.Is(err, domain.ErrProjectionInit),
		errors.Is(err, domain.ErrProjectionNotInitialized),
		errors.Is(err, domain.ErrDegenerateCalibration):
		return errUnprocessable(c, err.Error())
	case errors.Is(err, domain.ErrUnknownProjection),
		errors.Is(err, domain.ErrInvalidMap),
		errors.Is(err, domain.ErrInvalidCoordinate):
		return errBadRequest(c, err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
