package repositories

import (
	"context"

	"github.com/raccoongang/edx-extended-api/internal/models"
)

// ProgressRepository reads the learner report rows precomputed by the host
// platform's analytics pipeline.
type ProgressRepository interface {
	GetCourseReports(ctx context.Context, userID uint) ([]*models.LearnerCourseReport, error)
	GetBadgeReports(ctx context.Context, userID uint, courseID string) ([]*models.LearnerBadgeReport, error)
}
