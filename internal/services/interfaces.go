package services

import (
	"context"
	"time"

	"github.com/raccoongang/edx-extended-api/internal/models"
	"github.com/raccoongang/edx-extended-api/internal/repositories"
	"github.com/raccoongang/edx-extended-api/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateUserRequest = validator.CreateUserRequest
type UpdateUserRequest = validator.UpdateUserRequest

// UserPayload is the serialized directory record returned from create and
// update operations.
type UserPayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Name             string     `json:"name"`
	Org              string     `json:"org"`
	Language         string     `json:"language"`
	Location         string     `json:"location"`
	YearOfBirth      *int       `json:"year_of_birth"`
	Bio              string     `json:"bio"`
	Goals            string     `json:"goals"`
	LevelOfEducation string     `json:"level_of_education"`
	Gender           string     `json:"gender"`
	City             string     `json:"city"`
	Country          string     `json:"country"`
	Company          string     `json:"company"`
	EmployeeID       string     `json:"employee_id"`
	HireDate         *time.Time `json:"hire_date"`
	Level            string     `json:"level"`
	JobCode          string     `json:"job_code"`
	JobDescription   string     `json:"job_description"`
	Department       string     `json:"department"`
	Supervisor       string     `json:"supervisor"`
	LearningGroup    string     `json:"learning_group"`
	ExemptStatus     bool       `json:"exempt_status"`
	PhoneNumber      string     `json:"phone_number"`
	Comments         string     `json:"comments"`

	AnalyticsAccess *string `json:"analytics_access"`
	PlatformRole    string  `json:"platform_role"`

	InternalCatalogAccess   bool `json:"internal_catalog_access"`
	EdflexCatalogAccess     bool `json:"edflex_catalog_access"`
	CrehanaCatalogAccess    bool `json:"crehana_catalog_access"`
	AnderspinkCatalogAccess bool `json:"anderspink_catalog_access"`
	LearnlightCatalogAccess bool `json:"learnlight_catalog_access"`
}

// UserListPayload is the list/retrieve shape: the create/update payload plus
// the internal numeric id and the active flag.
type UserListPayload struct {
	UserPayload
	UserID   uint `json:"user_id"`
	IsActive bool `json:"is_active"`
}

// UserStatusResponse is a mutation outcome: the wire status plus the record.
type UserStatusResponse struct {
	Status string `json:"status"`
	UserPayload
}

// DeactivateResult is one entry of a deactivation outcome. UserID is nil when
// a username-addressed target does not exist.
type DeactivateResult struct {
	UserID   *uint  `json:"user_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// CoursePayload is the serialized course catalog entry.
type CoursePayload struct {
	ID               string     `json:"id"`
	DisplayName      string     `json:"display_name"`
	Org              string     `json:"org"`
	OverviewURL      string     `json:"overview_url"`
	Start            *time.Time `json:"start"`
	CardImageURL     string     `json:"card_image_url"`
	BannerImageURL   string     `json:"banner_image_url"`
	ShortDescription string     `json:"short_description"`
	Effort           string     `json:"effort"`
	Language         string     `json:"language"`
	CourseCategory   string     `json:"course_category"`
	Instructors      []string   `json:"instructors"`
	Modified         time.Time  `json:"modified"`
}

// ===== PROGRESS REPORT DTOs =====

type BadgeProgress struct {
	Badge       string     `json:"badge"`
	Score       float64    `json:"score"`
	Success     bool       `json:"success"`
	SuccessDate *time.Time `json:"success_date"`
}

type CourseProgress struct {
	CourseID       string           `json:"course_id"`
	Status         string           `json:"status"`
	Progress       float64          `json:"progress"`
	CurrentScore   float64          `json:"current_score"`
	TotalTimeSpent int64            `json:"total_time_spent"`
	EnrollmentDate *time.Time       `json:"enrollment_date"`
	CompletionDate *time.Time       `json:"completion_date"`
	CourseTitle    string           `json:"course_title"`
	Badges         []*BadgeProgress `json:"badges"`
}

type ProgressReport struct {
	UserID   uint              `json:"user_id"`
	Username string            `json:"username"`
	Name     string            `json:"name"`
	Courses  []*CourseProgress `json:"courses"`
}

// ===== SERVICE INTERFACES =====

// UserService is the user directory: lifecycle, conflict resolution and
// filtered reads.
type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*UserStatusResponse, error)
	Update(ctx context.Context, ref repositories.UserRef, req *UpdateUserRequest) (*UserStatusResponse, error)
	Get(ctx context.Context, ref repositories.UserRef) (*UserListPayload, error)
	List(ctx context.Context, filter repositories.UserFilter) ([]*UserListPayload, error)
	Deactivate(ctx context.Context, ref repositories.UserRef) (*DeactivateResult, error)
	BulkDeactivate(ctx context.Context, filter repositories.UserFilter) ([]*DeactivateResult, error)
}

// CourseService lists the course catalog within an organization scope.
type CourseService interface {
	List(ctx context.Context, orgs []string) ([]*CoursePayload, error)
}

// ProgressService aggregates per-user course completion and badge data.
type ProgressService interface {
	Get(ctx context.Context, ref repositories.UserRef) (*ProgressReport, error)
	List(ctx context.Context, filter repositories.UserFilter) ([]*ProgressReport, error)
	ExportXLSX(ctx context.Context, filter repositories.UserFilter) ([]byte, error)
}

// ServiceManager provides access to all services.
type ServiceManager interface {
	User() UserService
	Course() CourseService
	Progress() ProgressService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// buildUserPayload serializes a directory record for create/update responses.
func buildUserPayload(user *models.User) UserPayload {
	p := user.Profile
	return UserPayload{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,

		Name:             p.Name,
		Org:              p.Org,
		Language:         p.Language,
		Location:         p.Location,
		YearOfBirth:      p.YearOfBirth,
		Bio:              p.Bio,
		Goals:            p.Goals,
		LevelOfEducation: p.LevelOfEducation,
		Gender:           p.Gender,
		City:             p.City,
		Country:          p.Country,
		Company:          p.Company,
		EmployeeID:       p.EmployeeID,
		HireDate:         p.HireDate,
		Level:            p.Level,
		JobCode:          p.JobCode,
		JobDescription:   p.JobDescription,
		Department:       p.Department,
		Supervisor:       p.Supervisor,
		LearningGroup:    p.LearningGroup,
		ExemptStatus:     p.ExemptStatus,
		PhoneNumber:      p.PhoneNumber,
		Comments:         p.Comments,

		AnalyticsAccess: user.AnalyticsAccess(),
		PlatformRole:    user.PlatformRole(),

		InternalCatalogAccess:   user.HasCapability(models.CapabilityInternalCatalogDenied),
		EdflexCatalogAccess:     user.HasCapability(models.CapabilityEdflexCatalogDenied),
		CrehanaCatalogAccess:    user.HasCapability(models.CapabilityCrehanaCatalogDenied),
		AnderspinkCatalogAccess: user.HasCapability(models.CapabilityAnderspinkCatalogDenied),
		LearnlightCatalogAccess: user.HasCapability(models.CapabilityLearnlightCatalogDenied),
	}
}

// buildUserListPayload serializes a directory record for list/retrieve
// responses.
func buildUserListPayload(user *models.User) *UserListPayload {
	return &UserListPayload{
		UserPayload: buildUserPayload(user),
		UserID:      user.ID,
		IsActive:    user.IsActive,
	}
}
