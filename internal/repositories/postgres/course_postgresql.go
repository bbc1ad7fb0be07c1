package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories"
)

type courseRepository struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.CourseOverview, error) {
	var course models.CourseOverview
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.CourseOverview, error) {
	// The org scope is mandatory here: a requester with no matching site
	// organizations sees an empty catalog.
	if len(filters.Orgs) == 0 {
		return []*models.CourseOverview{}, nil
	}

	var courses []*models.CourseOverview
	err := r.db.WithContext(ctx).
		Where("org IN ?", filters.Orgs).
		Order("display_name").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (r *courseRepository) GetTitles(ctx context.Context, ids []string) (map[string]string, error) {
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	var courses []models.CourseOverview
	err := r.db.WithContext(ctx).
		Select("id, display_name").
		Where("id IN ?", ids).
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("get course titles: %w", err)
	}

	for _, c := range courses {
		titles[c.ID] = c.DisplayName
	}
	return titles, nil
}
