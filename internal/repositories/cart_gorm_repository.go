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

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// Add inserts a cart line. A course can be in a user's cart only once.
func (r *GORMCartRepository) Add(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Omit("Course").Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("course %s in cart: %w", item.CourseID, ErrDuplicate)
		}
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// ListByUser returns the user's cart, oldest first, with course details.
func (r *GORMCartRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at, id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart for user %s: %w", userID, err)
	}
	return items, nil
}

func (r *GORMCartRepository) Exists(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check cart: %w", err)
	}
	return count > 0, nil
}

// Delete removes one cart line owned by userID.
func (r *GORMCartRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteByUser removes every cart line owned by userID.
func (r *GORMCartRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to empty cart for user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteItems removes the given cart lines if they are still owned by userID.
func (r *GORMCartRepository) DeleteItems(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete cart items for user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
