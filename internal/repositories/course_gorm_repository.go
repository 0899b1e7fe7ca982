package repositories

import (
	"context"
	"errors"
	"fmt"

	"kelas/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCourseRepository is a GORM implementation of CourseRepository.
type GORMCourseRepository struct {
	db *gorm.DB
}

// NewGORMCourseRepository creates a new instance of GORMCourseRepository.
func NewGORMCourseRepository(db *gorm.DB) *GORMCourseRepository {
	return &GORMCourseRepository{db: db}
}

// GetAll retrieves courses ordered by title.
func (r *GORMCourseRepository) GetAll(ctx context.Context, publishedOnly bool) ([]models.Course, error) {
	var courses []models.Course
	q := r.db.WithContext(ctx).Order("title")
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	if err := q.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}
	return courses, nil
}

// GetByID retrieves a single course by its ID.
func (r *GORMCourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course %s: %w", id, err)
	}
	return &course, nil
}

// GetByIDs retrieves every existing course among ids. Missing ids are skipped.
func (r *GORMCourseRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	var courses []models.Course
	if len(ids) == 0 {
		return courses, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}
	return courses, nil
}

// Create creates a new course.
func (r *GORMCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("course slug %s: %w", course.Slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// Update overwrites an existing course.
func (r *GORMCourseRepository) Update(ctx context.Context, course *models.Course) error {
	res := r.db.WithContext(ctx).Model(&models.Course{}).Where("id = ?", course.ID).
		Select("title", "slug", "description", "instructor", "price", "currency", "published").
		Updates(course)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("course slug %s: %w", course.Slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to update course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("course %s: %w", course.ID, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a course. Existing enrollments are kept.
func (r *GORMCourseRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return nil
}
