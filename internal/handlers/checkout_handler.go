package handlers

import (
	"log"

	"kelas/internal/middleware"
	"kelas/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles order creation and payment verification.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout routes behind auth.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	checkoutRoutes := router.Group("/checkout", auth)
	checkoutRoutes.Post("/", h.HandleCreateCheckout)
	checkoutRoutes.Post("/verify", h.HandleVerifyPayment)
}

// CheckoutRequest carries the buyer details submitted with the cart.
type CheckoutRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,max=20"`
}

// VerifyPaymentRequest is posted by the client after the gateway callback.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// HandleCreateCheckout turns the cart into a pending order.
func (h *CheckoutHandler) HandleCreateCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	session, err := h.service.CreateCheckout(c.UserContext(), middleware.UserID(c), services.BuyerDetails{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		return respondError(c, "creating checkout", err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// HandleVerifyPayment confirms the payment signature and completes the order.
// Partial enrollment failures answer 207 with the course ids left out.
func (h *CheckoutHandler) HandleVerifyPayment(c *fiber.Ctx) error {
	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	result, err := h.service.VerifyAndCompleteCheckout(c.UserContext(), req.OrderID, req.PaymentID, req.Signature, middleware.UserID(c))
	if err != nil {
		return respondError(c, "verifying order "+req.OrderID, err)
	}

	if result.Partial() {
		log.Printf("Order %s verified with %d courses not enrolled", result.OrderID, len(result.NotEnrolled))
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
			"message":         "Payment verified, but some courses could not be enrolled",
			"error":           "Some courses could not be enrolled",
			"notEnrolledList": result.NotEnrolled,
		})
	}
	return c.JSON(fiber.Map{
		"message": "Payment verified successfully",
	})
}
