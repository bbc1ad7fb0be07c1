package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories"
)

type courseService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	lmsBaseURL string
}

func NewCourseService(repo repositories.Repository, logger *slog.Logger, lmsBaseURL string) CourseService {
	return &courseService{
		repo:       repo,
		logger:     logger,
		lmsBaseURL: strings.TrimRight(lmsBaseURL, "/"),
	}
}

func (s *courseService) List(ctx context.Context, orgs []string) ([]*CoursePayload, error) {
	courses, err := s.repo.Course().List(ctx, repositories.CourseFilters{Orgs: orgs})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	payloads := make([]*CoursePayload, 0, len(courses))
	for _, course := range courses {
		payloads = append(payloads, s.buildCoursePayload(course))
	}
	return payloads, nil
}

func (s *courseService) buildCoursePayload(course *models.CourseOverview) *CoursePayload {
	return &CoursePayload{
		ID:               course.ID,
		DisplayName:      course.DisplayName,
		Org:              course.Org,
		OverviewURL:      fmt.Sprintf("%s/courses/%s/about", s.lmsBaseURL, course.ID),
		Start:            course.Start,
		CardImageURL:     s.assetURL(course.CardImagePath),
		BannerImageURL:   s.assetURL(course.BannerImagePath),
		ShortDescription: course.ShortDescription,
		Effort:           course.Effort,
		Language:         course.Language,
		CourseCategory:   course.CourseCategory,
		Instructors:      course.Instructors,
		Modified:         course.Modified,
	}
}

// assetURL resolves a stored asset path against the platform base URL.
// Already-absolute paths pass through untouched.
func (s *courseService) assetURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return s.lmsBaseURL + "/" + strings.TrimLeft(path, "/")
}
