package repositories

import (
	"context"

	"kelas/internal/models"
)

// EnrollmentRepository defines the interface for enrollment data access.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Enrollment, error)
}
