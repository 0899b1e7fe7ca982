package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"kelas/internal/models"
	"kelas/internal/repositories"
)

// CartService manages the courses a user is about to buy.
type CartService struct {
	carts       repositories.CartRepository
	courses     repositories.CourseRepository
	enrollments *EnrollmentService
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, courses repositories.CourseRepository, enrollments *EnrollmentService) *CartService {
	return &CartService{
		carts:       carts,
		courses:     courses,
		enrollments: enrollments,
	}
}

// AddItem puts a published course the user does not own yet into the cart.
func (s *CartService) AddItem(ctx context.Context, userID, courseID string) (*models.CartItem, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrCourseNotFound)
		}
		return nil, err
	}
	if !course.Published {
		return nil, fmt.Errorf("course %s: %w", courseID, ErrCourseUnavailable)
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, fmt.Errorf("course %s: %w", courseID, ErrAlreadyEnrolled)
	}

	item := &models.CartItem{UserID: userID, CourseID: courseID}
	if err := s.carts.Add(ctx, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrAlreadyInCart)
		}
		return nil, err
	}
	item.Course = course
	return item, nil
}

// ListItems returns the user's cart, oldest first.
func (s *CartService) ListItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.carts.ListByUser(ctx, userID)
}

// RemoveItem deletes one line from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if err := s.carts.Delete(ctx, userID, itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("cart item %s: %w", itemID, ErrCartItemNotFound)
		}
		return err
	}
	return nil
}

// EmptyCart deletes every line in the user's cart. It reports whether
// anything was removed.
func (s *CartService) EmptyCart(ctx context.Context, userID string) (bool, error) {
	n, err := s.carts.DeleteByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	log.Printf("Emptied cart of user %s (%d items)", userID, n)
	return n > 0, nil
}

// RemoveItems deletes only the given lines. Lines added after they were
// captured stay in the cart.
func (s *CartService) RemoveItems(ctx context.Context, userID string, itemIDs []string) (int64, error) {
	return s.carts.DeleteItems(ctx, userID, itemIDs)
}
