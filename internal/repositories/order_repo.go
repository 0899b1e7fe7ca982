package repositories

import (
	"context"

	"kelas/internal/models"
)

// OrderRepository defines the interface for order data access.
// Status transitions are conditional: they apply only when the stored
// status still matches the expected one, and report ErrStatusConflict otherwise.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// MarkPaid moves a PENDING order to PAID and records the payment id.
	MarkPaid(ctx context.Context, id, paymentID string) error
	// MarkFulfilled stamps a PAID order once every line has been enrolled.
	MarkFulfilled(ctx context.Context, id string) error
	// RecordFailedAttempt counts a rejected verification of a PENDING order
	// and moves it to FAILED once maxAttempts is reached (0 disables the limit).
	RecordFailedAttempt(ctx context.Context, id string, maxAttempts int) (models.OrderStatus, error)
}
