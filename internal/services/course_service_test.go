package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories/postgres"
)

func newCourseServiceFixture(t *testing.T) (CourseService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CourseOverview{}))

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	slogLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	return NewCourseService(repo, slogLogger, "https://lms.example.com/"), db
}

func seedCourse(t *testing.T, db *gorm.DB, id, name, org string) {
	t.Helper()
	require.NoError(t, db.Create(&models.CourseOverview{
		ID:              id,
		DisplayName:     name,
		Org:             org,
		Instructors:     datatypes.JSONSlice[string]{"Prof. Smith"},
		CardImagePath:   "/asset-v1/card.png",
		BannerImagePath: "https://cdn.example.com/banner.png",
		Modified:        time.Now(),
	}).Error)
}

func TestCourseService_List(t *testing.T) {
	service, db := newCourseServiceFixture(t)
	ctx := context.Background()

	seedCourse(t, db, "course-v1:edX+DemoX+2026", "Demo Course", "edX")
	seedCourse(t, db, "course-v1:OrgX+CS101+2026", "Intro CS", "OrgX")

	t.Run("scoped to organization", func(t *testing.T) {
		courses, err := service.List(ctx, []string{"edX"})
		require.NoError(t, err)
		require.Len(t, courses, 1)

		course := courses[0]
		assert.Equal(t, "course-v1:edX+DemoX+2026", course.ID)
		assert.Equal(t, "https://lms.example.com/courses/course-v1:edX+DemoX+2026/about", course.OverviewURL)
		assert.Equal(t, "https://lms.example.com/asset-v1/card.png", course.CardImageURL)
		assert.Equal(t, "https://cdn.example.com/banner.png", course.BannerImageURL)
		assert.Equal(t, []string{"Prof. Smith"}, course.Instructors)
	})

	t.Run("empty scope yields empty catalog", func(t *testing.T) {
		courses, err := service.List(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, courses)
	})
}
