package handlers

import (
	"kelas/internal/middleware"
	"kelas/internal/models"
	"kelas/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CourseHandler serves the course catalog.
type CourseHandler struct {
	service  *services.CourseService
	validate *validator.Validate
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(service *services.CourseService) *CourseHandler {
	return &CourseHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public catalog routes and the admin routes
// guarded by auth.
func (h *CourseHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	courseRoutes := router.Group("/courses")
	courseRoutes.Get("/", h.HandleListCourses)
	courseRoutes.Get("/:id", h.HandleGetCourse)

	admin := middleware.AdminOnly()
	courseRoutes.Post("/", auth, admin, h.HandleCreateCourse)
	courseRoutes.Put("/:id", auth, admin, h.HandleUpdateCourse)
	courseRoutes.Delete("/:id", auth, admin, h.HandleDeleteCourse)
}

// HandleListCourses returns the published courses.
func (h *CourseHandler) HandleListCourses(c *fiber.Ctx) error {
	courses, err := h.service.ListCourses(c.UserContext(), false)
	if err != nil {
		return respondError(c, "listing courses", err)
	}
	return c.JSON(courses)
}

// HandleGetCourse returns one published course.
func (h *CourseHandler) HandleGetCourse(c *fiber.Ctx) error {
	course, err := h.service.GetCourse(c.UserContext(), c.Params("id"), false)
	if err != nil {
		return respondError(c, "getting course "+c.Params("id"), err)
	}
	return c.JSON(course)
}

func (h *CourseHandler) HandleCreateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return badBody(c, err)
	}
	course.ID = ""
	if ok, err := validateBody(c, h.validate, course); !ok {
		return err
	}
	if err := h.service.CreateCourse(c.UserContext(), &course); err != nil {
		return respondError(c, "creating course", err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (h *CourseHandler) HandleUpdateCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := c.BodyParser(&course); err != nil {
		return badBody(c, err)
	}
	course.ID = c.Params("id")
	if ok, err := validateBody(c, h.validate, course); !ok {
		return err
	}
	if err := h.service.UpdateCourse(c.UserContext(), &course); err != nil {
		return respondError(c, "updating course "+course.ID, err)
	}
	return c.JSON(course)
}

func (h *CourseHandler) HandleDeleteCourse(c *fiber.Ctx) error {
	if err := h.service.DeleteCourse(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, "deleting course "+c.Params("id"), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
