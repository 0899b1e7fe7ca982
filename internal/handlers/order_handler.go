package handlers

import (
	"kelas/internal/middleware"
	"kelas/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for the caller's orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes behind auth.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	orderRoutes := router.Group("/orders", auth)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// HandleGetOrders retrieves the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "listing orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrder(c.UserContext(), middleware.UserID(c), orderID)
	if err != nil {
		return respondError(c, "getting order "+orderID, err)
	}
	return c.JSON(order)
}
