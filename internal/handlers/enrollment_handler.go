package handlers

import (
	"kelas/internal/middleware"
	"kelas/internal/services"

	"github.com/gofiber/fiber/v2"
)

// EnrollmentHandler lists the courses the caller owns.
type EnrollmentHandler struct {
	service *services.EnrollmentService
}

func NewEnrollmentHandler(service *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

func (h *EnrollmentHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/enrollments", auth, h.HandleListEnrollments)
}

func (h *EnrollmentHandler) HandleListEnrollments(c *fiber.Ctx) error {
	enrollments, err := h.service.ListForUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "listing enrollments", err)
	}
	return c.JSON(enrollments)
}
