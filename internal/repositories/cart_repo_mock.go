package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"kelas/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	items map[string]models.CartItem
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		items: make(map[string]models.CartItem),
	}
}

func (r *MockCartRepository) Add(_ context.Context, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.UserID == item.UserID && existing.CourseID == item.CourseID {
			return fmt.Errorf("course %s in cart: %w", item.CourseID, ErrDuplicate)
		}
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	r.items[item.ID] = *item
	return nil
}

func (r *MockCartRepository) ListByUser(_ context.Context, userID string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.CartItem, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			list = append(list, item)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *MockCartRepository) Exists(_ context.Context, userID, courseID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.UserID == userID && item.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockCartRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return fmt.Errorf("cart item %s: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func (r *MockCartRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *MockCartRepository) DeleteItems(_ context.Context, userID string, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, id := range ids {
		if item, ok := r.items[id]; ok && item.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}
