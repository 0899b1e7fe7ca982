package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"syscall"

	"kelas/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors to HTTP status codes and client messages.
// Unknown errors become 500 without exposing their text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return fiber.StatusNotFound, "Order not found"
	case errors.Is(err, services.ErrCourseNotFound):
		return fiber.StatusNotFound, "Course not found"
	case errors.Is(err, services.ErrCartItemNotFound):
		return fiber.StatusNotFound, "Cart item not found"
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden, "Forbidden"
	case errors.Is(err, services.ErrInvalidSignature):
		return fiber.StatusBadRequest, "Invalid payment signature"
	case errors.Is(err, services.ErrEmptyCart):
		return fiber.StatusBadRequest, "Cart is empty"
	case errors.Is(err, services.ErrInvalidAmount):
		return fiber.StatusBadRequest, "Order amount must be positive"
	case errors.Is(err, services.ErrCourseUnavailable):
		return fiber.StatusBadRequest, "Course is not available for purchase"
	case errors.Is(err, services.ErrAlreadyProcessed):
		return fiber.StatusConflict, "Order already processed"
	case errors.Is(err, services.ErrOrderLocked):
		return fiber.StatusConflict, "Order is locked after too many failed verifications"
	case errors.Is(err, services.ErrVerifyInProgress):
		return fiber.StatusConflict, "Verification already in progress"
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return fiber.StatusConflict, "Already enrolled in course"
	case errors.Is(err, services.ErrAlreadyInCart):
		return fiber.StatusConflict, "Course already in cart"
	case errors.Is(err, services.ErrSlugTaken):
		return fiber.StatusConflict, "Course slug already taken"
	case errors.Is(err, services.ErrUserExists):
		return fiber.StatusConflict, "User already exists"
	case errors.Is(err, services.ErrInvalidCredential):
		return fiber.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, services.ErrGateway):
		return fiber.StatusBadGateway, "Payment gateway unavailable"
	case isConnectionRefused(err):
		return fiber.StatusServiceUnavailable, "Service temporarily unavailable"
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

func isConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || strings.Contains(err.Error(), "connection refused")
}

// respondError logs err and writes the mapped status with {"error": message}.
func respondError(c *fiber.Ctx, action string, err error) error {
	status, message := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("Error %s: %v", action, err)
	} else {
		log.Printf("Rejected %s: %v", action, err)
	}
	return c.Status(status).JSON(fiber.Map{"error": message})
}

func badBody(c *fiber.Ctx, err error) error {
	log.Printf("Error parsing request body: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid request body",
	})
}

// validateBody runs the struct tags of v and writes a 400 with a field map
// on failure. It returns false when a response was written.
func validateBody(c *fiber.Ctx, validate *validator.Validate, v interface{}) (bool, error) {
	err := validate.Struct(v)
	if err == nil {
		return true, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed"})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"errors": errorMessages,
	})
}
