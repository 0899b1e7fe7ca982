package repositories

import (
	"context"

	"kelas/internal/models"
)

// CourseRepository defines the interface for course data access.
type CourseRepository interface {
	GetAll(ctx context.Context, publishedOnly bool) ([]models.Course, error)
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}
