package repositories

import (
	"context"

	"kelas/internal/models"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	Add(ctx context.Context, item *models.CartItem) error
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	Exists(ctx context.Context, userID, courseID string) (bool, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteItems(ctx context.Context, userID string, ids []string) (int64, error)
}
