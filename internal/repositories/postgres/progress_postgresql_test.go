package postgres

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raccoongang/edx-extended-api/internal/cache"
	"github.com/raccoongang/edx-extended-api/internal/models"
)

func TestProgressRepository_GetCourseReports(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProgressPostgreSQL(db, nil)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.LearnerCourseReport{
		UserID:   1,
		CourseID: "course-v1:edX+DemoX+2025",
		Progress: 0.5,
	}).Error)
	require.NoError(t, db.Create(&models.LearnerCourseReport{
		UserID:   1,
		CourseID: "course-v1:edX+AlgoX+2025",
		Progress: 1.0,
	}).Error)
	require.NoError(t, db.Create(&models.LearnerCourseReport{
		UserID:   2,
		CourseID: "course-v1:edX+DemoX+2025",
	}).Error)

	reports, err := repo.GetCourseReports(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "course-v1:edX+AlgoX+2025", reports[0].CourseID)
	assert.Equal(t, "course-v1:edX+DemoX+2025", reports[1].CourseID)
}

func TestProgressRepository_CachesReportLookups(t *testing.T) {
	db := setupTestDB(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewProgressPostgreSQL(db, client)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.LearnerCourseReport{
		UserID:   7,
		CourseID: "course-v1:edX+DemoX+2025",
		Progress: 0.25,
	}).Error)
	require.NoError(t, db.Create(&models.LearnerBadgeReport{
		UserID:      7,
		CourseID:    "course-v1:edX+DemoX+2025",
		GradingRule: "Exam",
		SectionName: "Final",
		Success:     true,
	}).Error)

	t.Run("course reports served from cache after first read", func(t *testing.T) {
		first, err := repo.GetCourseReports(ctx, 7)
		require.NoError(t, err)
		require.Len(t, first, 1)
		assert.True(t, mr.Exists("report:courses:7"))

		// A row added behind the cache must not surface until the TTL expires.
		require.NoError(t, db.Create(&models.LearnerCourseReport{
			UserID:   7,
			CourseID: "course-v1:edX+AlgoX+2025",
		}).Error)

		second, err := repo.GetCourseReports(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, second, 1)

		mr.FastForward(cache.ReportCacheConfig.TTL)
		third, err := repo.GetCourseReports(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, third, 2)
	})

	t.Run("badge reports served from cache after first read", func(t *testing.T) {
		badges, err := repo.GetBadgeReports(ctx, 7, "course-v1:edX+DemoX+2025")
		require.NoError(t, err)
		require.Len(t, badges, 1)
		assert.Equal(t, "Exam", badges[0].GradingRule)
		assert.True(t, mr.Exists("report:badges:7:course-v1:edX+DemoX+2025"))
	})
}
