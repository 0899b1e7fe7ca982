package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kelas/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create stores the order together with its items.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
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
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// GetByID returns an order with its items in checkout order.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) MarkPaid(ctx context.Context, id, paymentID string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     models.OrderStatusPaid,
			"payment_id": paymentID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s is no longer pending: %w", id, ErrStatusConflict)
	}
	return nil
}

func (r *GORMOrderRepository) MarkFulfilled(ctx context.Context, id string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ? AND fulfilled_at IS NULL", id, models.OrderStatusPaid).
		Updates(map[string]interface{}{
			"fulfilled_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark order %s fulfilled: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s is not awaiting fulfillment: %w", id, ErrStatusConflict)
	}
	return nil
}

func (r *GORMOrderRepository) RecordFailedAttempt(ctx context.Context, id string, maxAttempts int) (models.OrderStatus, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, models.OrderStatusPending).
			Updates(map[string]interface{}{
				"failed_attempts": gorm.Expr("failed_attempts + 1"),
				"updated_at":      time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		if maxAttempts > 0 {
			err := tx.Model(&models.Order{}).
				Where("id = ? AND status = ? AND failed_attempts >= ?", id, models.OrderStatusPending, maxAttempts).
				Update("status", models.OrderStatusFailed).Error
			if err != nil {
				return err
			}
		}
		return tx.Select("status").First(&order, "id = ?", id).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to record verification attempt for order %s: %w", id, err)
	}
	return order.Status, nil
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
