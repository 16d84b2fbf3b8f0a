package response

import (
	"errors"
	"log"

	apperr "signwise/internal/errors"

	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *fiber.Ctx) error {
	return Error(c, fiber.StatusForbidden, "Insufficient permissions")
}

func ValidationError(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
		"code":  apperr.CodeValidation,
		"field": field,
	})
}

// FromError writes the status matching a domain error. Anything that is not a
// domain error is logged and reported as a 500 without its details.
func FromError(c *fiber.Ctx, err error) error {
	var de *apperr.DomainError
	if !errors.As(err, &de) {
		log.Printf("⚠️ %s %s failed: %v", c.Method(), c.Path(), err)
		return ServerError(c, "Internal server error")
	}

	body := fiber.Map{"error": de.Message, "code": de.Code}
	if de.Field != "" {
		body["field"] = de.Field
	}

	status := fiber.StatusInternalServerError
	switch de.Code {
	case apperr.CodeValidation:
		status = fiber.StatusBadRequest
	case apperr.CodeNotFound:
		status = fiber.StatusNotFound
	case apperr.CodeConflict:
		status = fiber.StatusConflict
	case apperr.CodeInvariant:
		log.Printf("⚠️ %s %s invariant violation: %v", c.Method(), c.Path(), err)
		body = fiber.Map{"error": "Internal server error", "code": de.Code}
	}
	return c.Status(status).JSON(body)
}
