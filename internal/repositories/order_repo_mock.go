package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"kelas/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

// GetByID returns a copy of the stored order.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	found := cloneOrder(order)
	return &found, nil
}

func (r *MockOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			list = append(list, cloneOrder(order))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *MockOrderRepository) MarkPaid(_ context.Context, id, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if order.Status != models.OrderStatusPending {
		return fmt.Errorf("order %s is no longer pending: %w", id, ErrStatusConflict)
	}
	order.Status = models.OrderStatusPaid
	order.PaymentID = &paymentID
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

func (r *MockOrderRepository) MarkFulfilled(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if order.Status != models.OrderStatusPaid || order.FulfilledAt != nil {
		return fmt.Errorf("order %s is not awaiting fulfillment: %w", id, ErrStatusConflict)
	}
	now := time.Now()
	order.FulfilledAt = &now
	order.UpdatedAt = now
	r.orders[id] = order
	return nil
}

func (r *MockOrderRepository) RecordFailedAttempt(_ context.Context, id string, maxAttempts int) (models.OrderStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return "", fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if order.Status != models.OrderStatusPending {
		return "", fmt.Errorf("order %s is no longer pending: %w", id, ErrStatusConflict)
	}
	order.FailedAttempts++
	if maxAttempts > 0 && order.FailedAttempts >= maxAttempts {
		order.Status = models.OrderStatusFailed
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return order.Status, nil
}

func cloneOrder(order models.Order) models.Order {
	order.Items = append([]models.OrderItem(nil), order.Items...)
	return order
}
