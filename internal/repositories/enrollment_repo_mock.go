package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kelas/internal/models"

	"github.com/google/uuid"
)

// MockEnrollmentRepository is an in-memory implementation of EnrollmentRepository.
type MockEnrollmentRepository struct {
	enrollments []models.Enrollment
	mu          sync.RWMutex
}

// NewMockEnrollmentRepository creates a new instance of MockEnrollmentRepository.
func NewMockEnrollmentRepository() *MockEnrollmentRepository {
	return &MockEnrollmentRepository{}
}

func (r *MockEnrollmentRepository) Create(_ context.Context, enrollment *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.enrollments {
		if e.UserID == enrollment.UserID && e.CourseID == enrollment.CourseID {
			return fmt.Errorf("enrollment %s/%s: %w", enrollment.UserID, enrollment.CourseID, ErrDuplicate)
		}
	}
	if enrollment.ID == "" {
		enrollment.ID = uuid.New().String()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now()
	}
	r.enrollments = append(r.enrollments, *enrollment)
	return nil
}

func (r *MockEnrollmentRepository) Get(_ context.Context, userID, courseID string) (*models.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			found := e
			return &found, nil
		}
	}
	return nil, fmt.Errorf("enrollment %s/%s: %w", userID, courseID, ErrNotFound)
}

func (r *MockEnrollmentRepository) ListByUser(_ context.Context, userID string) ([]models.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Enrollment, 0)
	for _, e := range r.enrollments {
		if e.UserID == userID {
			list = append(list, e)
		}
	}
	return list, nil
}
