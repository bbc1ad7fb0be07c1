package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories"
)

type progressService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewProgressService(repo repositories.Repository, logger *slog.Logger) ProgressService {
	return &progressService{
		repo:   repo,
		logger: logger,
	}
}

func (s *progressService) Get(ctx context.Context, ref repositories.UserRef) (*ProgressReport, error) {
	user, err := s.repo.User().GetByRef(ctx, ref)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, &NotFoundError{Status: StatusUserNotFound}
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.buildReport(ctx, user)
}

func (s *progressService) List(ctx context.Context, filter repositories.UserFilter) ([]*ProgressReport, error) {
	users, err := s.repo.User().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	reports := make([]*ProgressReport, 0, len(users))
	for _, user := range users {
		report, err := s.buildReport(ctx, user)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *progressService) buildReport(ctx context.Context, user *models.User) (*ProgressReport, error) {
	rows, err := s.repo.Progress().GetCourseReports(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course reports for user %d: %w", user.ID, err)
	}

	courseIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		courseIDs = append(courseIDs, row.CourseID)
	}
	titles, err := s.repo.Course().GetTitles(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve course titles: %w", err)
	}

	courses := make([]*CourseProgress, 0, len(rows))
	for _, row := range rows {
		badges, err := s.buildBadges(ctx, user.ID, row.CourseID)
		if err != nil {
			return nil, err
		}

		// Courses whose overview was deleted keep their id as the title.
		title := titles[row.CourseID]
		if title == "" {
			title = row.CourseID
		}

		courses = append(courses, &CourseProgress{
			CourseID:       row.CourseID,
			Status:         row.Status.Verbose(),
			Progress:       row.Progress,
			CurrentScore:   row.CurrentScore,
			TotalTimeSpent: row.TotalTimeSpent,
			EnrollmentDate: row.EnrollmentDate,
			CompletionDate: row.CompletionDate,
			CourseTitle:    title,
			Badges:         badges,
		})
	}

	return &ProgressReport{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Profile.Name,
		Courses:  courses,
	}, nil
}

func (s *progressService) buildBadges(ctx context.Context, userID uint, courseID string) ([]*BadgeProgress, error) {
	rows, err := s.repo.Progress().GetBadgeReports(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge reports for user %d: %w", userID, err)
	}

	badges := make([]*BadgeProgress, 0, len(rows))
	for _, row := range rows {
		badges = append(badges, &BadgeProgress{
			Badge:       fmt.Sprintf("%s ▸ %s", row.GradingRule, row.SectionName),
			Score:       row.Score,
			Success:     row.Success,
			SuccessDate: row.SuccessDate,
		})
	}
	return badges, nil
}

var exportHeaders = []string{
	"User ID", "Username", "Name", "Course ID", "Course Title", "Status",
	"Progress", "Current Score", "Total Time Spent", "Enrollment Date", "Completion Date",
}

// ExportXLSX renders the progress report as a spreadsheet, one row per
// user and course pair.
func (s *progressService) ExportXLSX(ctx context.Context, filter repositories.UserFilter) ([]byte, error) {
	reports, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Progress Report"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	rowNum := 2
	for _, report := range reports {
		for _, course := range report.Courses {
			values := []interface{}{
				report.UserID,
				report.Username,
				report.Name,
				course.CourseID,
				course.CourseTitle,
				course.Status,
				course.Progress,
				course.CurrentScore,
				course.TotalTimeSpent,
				formatDate(course.EnrollmentDate),
				formatDate(course.CompletionDate),
			}
			for col, value := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return nil, fmt.Errorf("failed to write row: %w", err)
				}
			}
			rowNum++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Progress report exported", "users", len(reports), "rows", rowNum-2)
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
