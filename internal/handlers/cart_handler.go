package handlers

import (
	"kelas/internal/middleware"
	"kelas/internal/models"
	"kelas/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the caller's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes behind auth.
func (h *CartHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	cartRoutes := router.Group("/cart", auth)
	cartRoutes.Get("/", h.HandleListCart)
	cartRoutes.Post("/", h.HandleAddToCart)
	cartRoutes.Delete("/", h.HandleEmptyCart)
	cartRoutes.Delete("/:id", h.HandleRemoveFromCart)
}

// AddToCartRequest represents the request body for adding a course.
type AddToCartRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

func (h *CartHandler) HandleListCart(c *fiber.Ctx) error {
	items, err := h.service.ListItems(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "listing cart", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	var total int64
	for _, item := range items {
		if item.Course != nil {
			total += item.Course.Price
		}
	}
	return c.JSON(fiber.Map{
		"items": items,
		"total": total,
	})
}

func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}
	item, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), req.CourseID)
	if err != nil {
		return respondError(c, "adding course "+req.CourseID+" to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	if err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, "removing cart item "+c.Params("id"), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CartHandler) HandleEmptyCart(c *fiber.Ctx) error {
	if _, err := h.service.EmptyCart(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, "emptying cart", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
