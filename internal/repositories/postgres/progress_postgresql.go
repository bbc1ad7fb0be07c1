package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/raccoongang/edx-extended-api/internal/cache"
	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories"
)

type progressRepository struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewProgressPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProgressRepository {
	return &progressRepository{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.ReportCacheConfig.Prefix),
	}
}

// Report rows are written by the analytics pipeline, not by this service, so
// lookups can be cached for the full ReportCacheConfig TTL without an
// invalidation path here.
func (r *progressRepository) GetCourseReports(ctx context.Context, userID uint) ([]*models.LearnerCourseReport, error) {
	cacheKey := fmt.Sprintf("courses:%d", userID)
	var cached []*models.LearnerCourseReport
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	var reports []*models.LearnerCourseReport
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("course_id").
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("get course reports: %w", err)
	}

	cache.SafeSet(ctx, r.cache, cacheKey, reports, cache.ReportCacheConfig.TTL)
	return reports, nil
}

func (r *progressRepository) GetBadgeReports(ctx context.Context, userID uint, courseID string) ([]*models.LearnerBadgeReport, error) {
	cacheKey := fmt.Sprintf("badges:%d:%s", userID, courseID)
	var cached []*models.LearnerBadgeReport
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	var badges []*models.LearnerBadgeReport
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("id").
		Find(&badges).Error
	if err != nil {
		return nil, fmt.Errorf("get badge reports: %w", err)
	}

	cache.SafeSet(ctx, r.cache, cacheKey, badges, cache.ReportCacheConfig.TTL)
	return badges, nil
}
