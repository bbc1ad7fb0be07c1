package models

import "time"

type CourseReportStatus int

const (
	CourseNotStarted CourseReportStatus = iota
	CourseInProgress
	CourseFinished
	CourseFailed
)

var courseStatusNames = map[CourseReportStatus]string{
	CourseNotStarted: "Not Started",
	CourseInProgress: "In Progress",
	CourseFinished:   "Finished",
	CourseFailed:     "Failed",
}

// Verbose returns the display name for the status, empty for unknown values.
func (s CourseReportStatus) Verbose() string {
	return courseStatusNames[s]
}

// LearnerCourseReport is one learner's aggregated state in one course,
// precomputed by the host platform's analytics pipeline.
type LearnerCourseReport struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   uint   `json:"user_id" gorm:"index:idx_course_report_user;not null"`
	CourseID string `json:"course_id" gorm:"index;not null;size:255"`

	Status         CourseReportStatus `json:"status" gorm:"not null;default:0"`
	Progress       float64            `json:"progress"`
	CurrentScore   float64            `json:"current_score"`
	TotalTimeSpent int64              `json:"total_time_spent"`
	EnrollmentDate *time.Time         `json:"enrollment_date"`
	CompletionDate *time.Time         `json:"completion_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LearnerCourseReport) TableName() string {
	return "learner_course_reports"
}

// LearnerBadgeReport is one badge outcome for a learner in a course section.
type LearnerBadgeReport struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   uint   `json:"user_id" gorm:"index;not null"`
	CourseID string `json:"course_id" gorm:"index;not null;size:255"`

	GradingRule string     `json:"grading_rule" gorm:"size:255"`
	SectionName string     `json:"section_name" gorm:"size:255"`
	Score       float64    `json:"score"`
	Success     bool       `json:"success"`
	SuccessDate *time.Time `json:"success_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LearnerBadgeReport) TableName() string {
	return "learner_badge_reports"
}
