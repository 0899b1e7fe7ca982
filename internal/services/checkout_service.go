package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"kelas/internal/metrics"
	"kelas/internal/models"
	"kelas/internal/repositories"
	"kelas/pkg/paygateway"

	"github.com/google/uuid"
)

// PaymentGateway is the part of the payment provider the checkout uses.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req paygateway.OrderRequest) (*paygateway.Order, error)
	Verify(gatewayOrderID, paymentID, signature string) bool
	KeyID() string
}

// Enroller grants course access after payment.
type Enroller interface {
	Enroll(ctx context.Context, userID, courseID, orderID string) (*models.Enrollment, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
}

// CartStore is the cart view the checkout needs.
type CartStore interface {
	ListItems(ctx context.Context, userID string) ([]models.CartItem, error)
	RemoveItems(ctx context.Context, userID string, itemIDs []string) (int64, error)
}

// CheckoutConfig tunes the checkout flow.
type CheckoutConfig struct {
	Currency string
	// MaxVerifyAttempts locks a PENDING order (status FAILED) after this many
	// rejected signatures. Zero keeps the order retryable forever.
	MaxVerifyAttempts int
	// LockTTL bounds how long one verification may hold the per-order lock.
	LockTTL time.Duration
}

// CheckoutDeps groups the collaborators of CheckoutService.
type CheckoutDeps struct {
	Orders   repositories.OrderRepository
	Courses  repositories.CourseRepository
	Cart     CartStore
	Enroller Enroller
	Gateway  PaymentGateway
	Locker   Locker
	Events   EventPublisher // optional
}

// BuyerDetails are the contact details submitted at checkout.
type BuyerDetails struct {
	Name  string
	Email string
	Phone string
}

// CheckoutSession is what the browser needs to open the hosted payment page.
type CheckoutSession struct {
	OrderID        string `json:"orderId"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"keyId"`
}

// VerifyResult describes a completed verification.
type VerifyResult struct {
	OrderID     string
	Status      models.OrderStatus
	Enrolled    []string // Course ids
	NotEnrolled []string // Course ids whose enrollment failed
	Resumed     bool     // Fulfillment of an already PAID order was resumed
}

// Partial reports whether some courses could not be enrolled.
func (r *VerifyResult) Partial() bool { return len(r.NotEnrolled) > 0 }

// CheckoutService coordinates order creation and payment verification.
type CheckoutService struct {
	orders   repositories.OrderRepository
	courses  repositories.CourseRepository
	cart     CartStore
	enroller Enroller
	gateway  PaymentGateway
	locker   Locker
	events   EventPublisher
	cfg      CheckoutConfig
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(deps CheckoutDeps, cfg CheckoutConfig) *CheckoutService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if deps.Locker == nil {
		deps.Locker = NewLocalLocker()
	}
	return &CheckoutService{
		orders:   deps.Orders,
		courses:  deps.Courses,
		cart:     deps.Cart,
		enroller: deps.Enroller,
		gateway:  deps.Gateway,
		locker:   deps.Locker,
		events:   deps.Events,
		cfg:      cfg,
	}
}

// CreateCheckout snapshots the caller's cart into a PENDING order and opens
// a payment session for it. Courses the caller already owns are left out.
func (s *CheckoutService) CreateCheckout(ctx context.Context, userID string, buyer BuyerDetails) (*CheckoutSession, error) {
	cartItems, err := s.cart.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	courseIDs := make([]string, 0, len(cartItems))
	for _, item := range cartItems {
		courseIDs = append(courseIDs, item.CourseID)
	}
	courses, err := s.courses.GetByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", err)
	}
	byID := make(map[string]models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	var (
		items  []models.OrderItem
		amount int64
	)
	for _, cartItem := range cartItems {
		course, ok := byID[cartItem.CourseID]
		if !ok || !course.Published {
			return nil, fmt.Errorf("course %s: %w", cartItem.CourseID, ErrCourseUnavailable)
		}
		enrolled, err := s.enroller.IsEnrolled(ctx, userID, course.ID)
		if err != nil {
			return nil, err
		}
		if enrolled {
			continue
		}
		items = append(items, models.OrderItem{
			CourseID:   course.ID,
			CartItemID: cartItem.ID,
			Price:      course.Price,
		})
		amount += course.Price
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	order := &models.Order{
		ID:         uuid.New().String(),
		UserID:     userID,
		Amount:     amount,
		Currency:   s.cfg.Currency,
		Status:     models.OrderStatusPending,
		Items:      items,
		BuyerName:  buyer.Name,
		BuyerEmail: buyer.Email,
		BuyerPhone: buyer.Phone,
	}

	start := time.Now()
	gwOrder, err := s.gateway.CreateOrder(ctx, paygateway.OrderRequest{
		Amount:   amount,
		Currency: s.cfg.Currency,
		Receipt:  order.ID,
		Notes:    map[string]string{"user_id": userID},
	})
	metrics.GatewayLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	order.GatewayOrderID = gwOrder.ID

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	metrics.CheckoutsCreated.Inc()
	log.Printf("Order %s created for user %s (gateway order %s, %d %s)", order.ID, userID, order.GatewayOrderID, amount, order.Currency)
	s.publish(EventCheckoutCreated, order, "")

	return &CheckoutSession{
		OrderID:        order.ID,
		GatewayOrderID: order.GatewayOrderID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// VerifyAndCompleteCheckout checks the payment callback signature and, when
// valid, moves the order from PENDING to PAID exactly once, enrolls the
// caller in every ordered course and removes the purchased lines from the
// cart. A PAID order whose fulfillment did not finish is resumed when the
// same payment is submitted again.
func (s *CheckoutService) VerifyAndCompleteCheckout(ctx context.Context, orderID, paymentID, signature, callerUserID string) (result *VerifyResult, err error) {
	defer func() { metrics.CheckoutVerifications.WithLabelValues(verifyOutcome(result, err)).Inc() }()

	// Only the owner may contend for the lock.
	if _, err := s.ownedOrder(ctx, orderID, callerUserID); err != nil {
		return nil, err
	}

	unlock, acquired, err := s.locker.TryLock(ctx, "checkout:verify:"+orderID, s.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order %s: %w", orderID, err)
	}
	if !acquired {
		return nil, ErrVerifyInProgress
	}
	defer unlock()

	order, err := s.ownedOrder(ctx, orderID, callerUserID)
	if err != nil {
		return nil, err
	}

	switch {
	case order.Status == models.OrderStatusFailed:
		return nil, ErrOrderLocked
	case order.Fulfilled():
		return nil, ErrAlreadyProcessed
	}

	if !s.gateway.Verify(order.GatewayOrderID, paymentID, signature) {
		s.recordFailedAttempt(ctx, order)
		return nil, ErrInvalidSignature
	}

	result = &VerifyResult{OrderID: order.ID}
	switch order.Status {
	case models.OrderStatusPending:
		if err := s.orders.MarkPaid(ctx, order.ID, paymentID); err != nil {
			if errors.Is(err, repositories.ErrStatusConflict) {
				return nil, ErrAlreadyProcessed
			}
			return nil, fmt.Errorf("failed to mark order paid: %w", err)
		}
		order.Status = models.OrderStatusPaid
		order.PaymentID = &paymentID
		log.Printf("Order %s paid with payment %s", order.ID, paymentID)
	case models.OrderStatusPaid:
		if order.PaymentID == nil || *order.PaymentID != paymentID {
			return nil, ErrAlreadyProcessed
		}
		result.Resumed = true
		log.Printf("Resuming fulfillment of paid order %s", order.ID)
	}
	result.Status = order.Status

	// Sequential, in order; one failed course does not stop the rest.
	for _, item := range order.Items {
		enrollment, err := s.enroller.Enroll(ctx, order.UserID, item.CourseID, order.ID)
		if err != nil || enrollment == nil {
			log.Printf("Failed to enroll user %s in course %s for order %s: %v", order.UserID, item.CourseID, order.ID, err)
			result.NotEnrolled = append(result.NotEnrolled, item.CourseID)
			continue
		}
		result.Enrolled = append(result.Enrolled, item.CourseID)
	}

	removed, err := s.cart.RemoveItems(ctx, order.UserID, order.CartItemIDs())
	if err != nil {
		// Order stays PAID and unfulfilled; resubmitting the payment resumes here.
		return nil, fmt.Errorf("failed to clear purchased cart items: %w", err)
	}
	log.Printf("Removed %d purchased items from cart of user %s", removed, order.UserID)

	if result.Partial() {
		log.Printf("Order %s paid but %d of %d courses not enrolled", order.ID, len(result.NotEnrolled), len(order.Items))
		return result, nil
	}

	if err := s.orders.MarkFulfilled(ctx, order.ID); err != nil && !errors.Is(err, repositories.ErrStatusConflict) {
		return nil, fmt.Errorf("failed to mark order fulfilled: %w", err)
	}
	s.publish(EventCheckoutCompleted, order, paymentID)
	return result, nil
}

func (s *CheckoutService) ownedOrder(ctx context.Context, orderID, callerUserID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != callerUserID {
		log.Printf("User %s attempted to verify order %s owned by another user", callerUserID, orderID)
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *CheckoutService) recordFailedAttempt(ctx context.Context, order *models.Order) {
	if order.Status != models.OrderStatusPending {
		return
	}
	status, err := s.orders.RecordFailedAttempt(ctx, order.ID, s.cfg.MaxVerifyAttempts)
	if err != nil {
		log.Printf("Failed to record rejected verification of order %s: %v", order.ID, err)
		return
	}
	if status == models.OrderStatusFailed {
		log.Printf("Order %s locked after %d rejected verifications", order.ID, s.cfg.MaxVerifyAttempts)
	}
}

func (s *CheckoutService) publish(routingKey string, order *models.Order, paymentID string) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(CheckoutEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		GatewayOrderID: order.GatewayOrderID,
		PaymentID:      paymentID,
		Amount:         order.Amount,
		Currency:       order.Currency,
		CourseIDs:      order.CourseIDs(),
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", routingKey, order.ID, err)
		return
	}
	if err := s.events.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", routingKey, order.ID, err)
	}
}

func verifyOutcome(result *VerifyResult, err error) string {
	switch {
	case err == nil && result != nil && result.Partial():
		return metrics.OutcomePartial
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrInvalidSignature):
		return metrics.OutcomeInvalidSignature
	case errors.Is(err, ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.Is(err, ErrOrderNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrAlreadyProcessed):
		return metrics.OutcomeAlreadyProcessed
	case errors.Is(err, ErrOrderLocked):
		return metrics.OutcomeLocked
	case errors.Is(err, ErrVerifyInProgress):
		return metrics.OutcomeInProgress
	}
	return metrics.OutcomeError
}
