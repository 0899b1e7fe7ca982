package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kelas/internal/metrics"
	"kelas/internal/models"
	"kelas/internal/repositories"
)

// EnrollmentService grants course access.
type EnrollmentService struct {
	repo repositories.EnrollmentRepository
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(repo repositories.EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{repo: repo}
}

// Enroll grants userID access to courseID. If the user is already enrolled
// the existing enrollment is returned unchanged, so repeated calls are safe.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID, orderID string) (*models.Enrollment, error) {
	existing, err := s.repo.Get(ctx, userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	enrollment := &models.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		OrderID:  orderID,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Lost a race with a concurrent insert of the same pair
			return s.repo.Get(ctx, userID, courseID)
		}
		return nil, fmt.Errorf("failed to enroll user %s in course %s: %w", userID, courseID, err)
	}

	metrics.EnrollmentsCreated.Inc()
	log.Printf("Enrolled user %s in course %s (order %s)", userID, courseID, orderID)
	return enrollment, nil
}

// IsEnrolled reports whether userID has access to courseID.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	_, err := s.repo.Get(ctx, userID, courseID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// ListForUser returns every enrollment of userID.
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]models.Enrollment, error) {
	return s.repo.ListByUser(ctx, userID)
}
