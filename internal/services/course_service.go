package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kelas/internal/models"
	"kelas/internal/repositories"
)

// CourseService handles the course catalog.
type CourseService struct {
	repo            repositories.CourseRepository
	defaultCurrency string
}

// NewCourseService creates a new CourseService.
func NewCourseService(repo repositories.CourseRepository, defaultCurrency string) *CourseService {
	return &CourseService{
		repo:            repo,
		defaultCurrency: defaultCurrency,
	}
}

// ListCourses returns the catalog. Drafts are included only when asked.
func (s *CourseService) ListCourses(ctx context.Context, includeDrafts bool) ([]models.Course, error) {
	return s.repo.GetAll(ctx, !includeDrafts)
}

// GetCourse returns one course. Unpublished courses are hidden unless includeDrafts.
func (s *CourseService) GetCourse(ctx context.Context, id string, includeDrafts bool) (*models.Course, error) {
	course, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapCourseErr(err)
	}
	if !course.Published && !includeDrafts {
		return nil, fmt.Errorf("course %s: %w", id, ErrCourseNotFound)
	}
	return course, nil
}

func (s *CourseService) CreateCourse(ctx context.Context, course *models.Course) error {
	s.normalize(course)
	if err := s.repo.Create(ctx, course); err != nil {
		return mapCourseErr(err)
	}
	return nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, course *models.Course) error {
	s.normalize(course)
	if err := s.repo.Update(ctx, course); err != nil {
		return mapCourseErr(err)
	}
	return nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapCourseErr(err)
	}
	return nil
}

func (s *CourseService) normalize(course *models.Course) {
	course.Slug = strings.ToLower(strings.TrimSpace(course.Slug))
	course.Currency = strings.ToUpper(course.Currency)
	if course.Currency == "" {
		course.Currency = s.defaultCurrency
	}
}

func mapCourseErr(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("%v: %w", err, ErrCourseNotFound)
	case errors.Is(err, repositories.ErrDuplicate):
		return fmt.Errorf("%v: %w", err, ErrSlugTaken)
	}
	return err
}
