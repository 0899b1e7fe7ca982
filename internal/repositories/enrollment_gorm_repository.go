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

// GORMEnrollmentRepository is a GORM implementation of EnrollmentRepository.
type GORMEnrollmentRepository struct {
	db *gorm.DB
}

// NewGORMEnrollmentRepository creates a new instance of GORMEnrollmentRepository.
func NewGORMEnrollmentRepository(db *gorm.DB) *GORMEnrollmentRepository {
	return &GORMEnrollmentRepository{db: db}
}

// Create inserts an enrollment. The (user_id, course_id) unique index
// rejects a second row for the same pair with ErrDuplicate.
func (r *GORMEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.New().String()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("enrollment %s/%s: %w", enrollment.UserID, enrollment.CourseID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *GORMEnrollmentRepository) Get(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).First(&enrollment, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("enrollment %s/%s: %w", userID, courseID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return &enrollment, nil
}

func (r *GORMEnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments for user %s: %w", userID, err)
	}
	return enrollments, nil
}
