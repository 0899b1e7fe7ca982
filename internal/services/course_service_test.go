package services_test

import (
	"context"
	"fmt"
	"testing"

	"kelas/internal/models"
	"kelas/internal/repositories"
	"kelas/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCourseRepository is a mock implementation of repositories.CourseRepository
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) GetAll(ctx context.Context, publishedOnly bool) ([]models.Course, error) {
	args := m.Called(publishedOnly)
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *MockCourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	args := m.Called(ids)
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *MockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	return m.Called(course).Error(0)
}

func (m *MockCourseRepository) Update(ctx context.Context, course *models.Course) error {
	return m.Called(course).Error(0)
}

func (m *MockCourseRepository) Delete(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func TestCourseService_ListCourses(t *testing.T) {
	mockRepo := new(MockCourseRepository)
	service := services.NewCourseService(mockRepo, "INR")

	published := []models.Course{{ID: "1", Title: "Go Basics", Price: 49900, Published: true}}
	mockRepo.On("GetAll", true).Return(published, nil).Once()
	mockRepo.On("GetAll", false).Return(append(published, models.Course{ID: "2", Title: "Draft"}), nil).Once()

	courses, err := service.ListCourses(context.Background(), false)
	assert.NoError(t, err)
	assert.Equal(t, published, courses)

	courses, err = service.ListCourses(context.Background(), true)
	assert.NoError(t, err)
	assert.Len(t, courses, 2)
	mockRepo.AssertExpectations(t)
}

func TestCourseService_GetCourse(t *testing.T) {
	mockRepo := new(MockCourseRepository)
	service := services.NewCourseService(mockRepo, "INR")
	ctx := context.Background()

	mockRepo.On("GetByID", "1").Return(&models.Course{ID: "1", Published: true}, nil).Once()
	course, err := service.GetCourse(ctx, "1", false)
	assert.NoError(t, err)
	assert.Equal(t, "1", course.ID)

	// Drafts are hidden from the public catalog
	mockRepo.On("GetByID", "draft").Return(&models.Course{ID: "draft"}, nil).Twice()
	_, err = service.GetCourse(ctx, "draft", false)
	assert.ErrorIs(t, err, services.ErrCourseNotFound)
	_, err = service.GetCourse(ctx, "draft", true)
	assert.NoError(t, err)

	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("course 99: %w", repositories.ErrNotFound)).Once()
	course, err = service.GetCourse(ctx, "99", true)
	assert.ErrorIs(t, err, services.ErrCourseNotFound)
	assert.Nil(t, course)
	mockRepo.AssertExpectations(t)
}

func TestCourseService_CreateCourse(t *testing.T) {
	mockRepo := new(MockCourseRepository)
	service := services.NewCourseService(mockRepo, "INR")
	ctx := context.Background()

	course := &models.Course{Title: "Go Basics", Slug: "  Go-Basics ", Price: 49900}
	mockRepo.On("Create", course).Return(nil).Once()
	require.NoError(t, service.CreateCourse(ctx, course))
	assert.Equal(t, "go-basics", course.Slug)
	assert.Equal(t, "INR", course.Currency)

	dup := &models.Course{Title: "Go Basics", Slug: "go-basics", Currency: "usd"}
	mockRepo.On("Create", dup).Return(fmt.Errorf("course slug go-basics: %w", repositories.ErrDuplicate)).Once()
	err := service.CreateCourse(ctx, dup)
	assert.ErrorIs(t, err, services.ErrSlugTaken)
	assert.Equal(t, "USD", dup.Currency)
	mockRepo.AssertExpectations(t)
}

func TestCourseService_UpdateAndDeleteCourse(t *testing.T) {
	mockRepo := new(MockCourseRepository)
	service := services.NewCourseService(mockRepo, "INR")
	ctx := context.Background()

	updated := &models.Course{ID: "1", Title: "Go Basics 2", Slug: "go-basics"}
	mockRepo.On("Update", updated).Return(nil).Once()
	assert.NoError(t, service.UpdateCourse(ctx, updated))

	missing := &models.Course{ID: "99", Slug: "missing"}
	mockRepo.On("Update", missing).Return(fmt.Errorf("course 99: %w", repositories.ErrNotFound)).Once()
	assert.ErrorIs(t, service.UpdateCourse(ctx, missing), services.ErrCourseNotFound)

	mockRepo.On("Delete", "1").Return(nil).Once()
	assert.NoError(t, service.DeleteCourse(ctx, "1"))

	mockRepo.On("Delete", "99").Return(fmt.Errorf("course 99: %w", repositories.ErrNotFound)).Once()
	assert.ErrorIs(t, service.DeleteCourse(ctx, "99"), services.ErrCourseNotFound)
	mockRepo.AssertExpectations(t)
}
