package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"kelas/internal/models"

	"github.com/google/uuid"
)

// MockCourseRepository is an in-memory implementation of CourseRepository.
type MockCourseRepository struct {
	courses map[string]models.Course
	mu      sync.RWMutex
}

// NewMockCourseRepository creates a new instance of MockCourseRepository.
func NewMockCourseRepository() *MockCourseRepository {
	return &MockCourseRepository{
		courses: make(map[string]models.Course),
	}
}

func (r *MockCourseRepository) GetAll(_ context.Context, publishedOnly bool) ([]models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Course, 0, len(r.courses))
	for _, c := range r.courses {
		if publishedOnly && !c.Published {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Title < list[j].Title })
	return list, nil
}

func (r *MockCourseRepository) GetByID(_ context.Context, id string) (*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	course, ok := r.courses[id]
	if !ok {
		return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return &course, nil
}

func (r *MockCourseRepository) GetByIDs(_ context.Context, ids []string) ([]models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.courses[id]; ok {
			list = append(list, c)
		}
	}
	return list, nil
}

func (r *MockCourseRepository) Create(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	for _, c := range r.courses {
		if c.Slug == course.Slug {
			return fmt.Errorf("course slug %s: %w", course.Slug, ErrDuplicate)
		}
	}
	r.courses[course.ID] = *course
	return nil
}

func (r *MockCourseRepository) Update(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[course.ID]; !ok {
		return fmt.Errorf("course %s: %w", course.ID, ErrNotFound)
	}
	r.courses[course.ID] = *course
	return nil
}

func (r *MockCourseRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.courses[id]; !ok {
		return fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	delete(r.courses, id)
	return nil
}
