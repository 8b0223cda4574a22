package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/gohye-progression/backend/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
)

// SendJSON sends a JSON response using Fiber
func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

// SendSuccess sends a successful JSON response
func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	response := models.NewSuccessResponse(data, message)
	return SendJSON(c, http.StatusOK, response)
}

// SendError sends an error JSON response
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	response := models.NewErrorResponse(code, message, details, nil)
	return SendJSON(c, statusCode, response)
}

// SendBadRequest sends a bad request error response
func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// SendUnprocessableEntity sends an unprocessable entity error response
func SendUnprocessableEntity(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, details)
}

// StatusForReason maps an outcome reason onto an HTTP status.
func StatusForReason(reason outcome.Reason) int {
	switch reason {
	case outcome.ReasonNone:
		return http.StatusOK
	case outcome.ReasonInvalidMilestone, outcome.ReasonInvalidAmount:
		return http.StatusBadRequest
	case outcome.ReasonItemNotFound:
		return http.StatusNotFound
	case outcome.ReasonAlreadyClaimed:
		return http.StatusConflict
	case outcome.ReasonNotEligible, outcome.ReasonLevelNotReached, outcome.ReasonRebirthNotReached:
		return http.StatusUnprocessableEntity
	case outcome.ReasonLockTimeout:
		return http.StatusTooManyRequests
	case outcome.ReasonStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// SendOutcome writes result as data, choosing the envelope from its outcome.
func SendOutcome(c *fiber.Ctx, o outcome.Outcome, result interface{}) error {
	if o.Success {
		return SendSuccess(c, result, o.Message)
	}
	response := models.NewErrorResponse(string(o.Reason), o.Message, nil, result)
	return SendJSON(c, StatusForReason(o.Reason), response)
}

// HandleValidationErrors converts validation errors to API response
func HandleValidationErrors(c *fiber.Ctx, errors []models.ValidationError) error {
	details := make(map[string]string)
	for _, err := range errors {
		details[err.Field] = err.Description
	}
	return SendUnprocessableEntity(c, "Validation failed", details)
}

// GetIPAddress extracts the client IP address
func GetIPAddress(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.IP()
}

// GetUserAgent extracts the user agent
func GetUserAgent(c *fiber.Ctx) string {
	return c.Get("User-Agent")
}
