package models

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// Capability is a named feature flag attached to a user. The catalog
// capabilities record membership of the corresponding "denied" group, so
// presence of the capability means the matching *_catalog_access API field
// reads true.
type Capability string

const (
	CapabilityAnalyticsFull    Capability = "analytics_full_access"
	CapabilityAnalyticsLimited Capability = "analytics_limited_access"
	CapabilityStudioAdmin      Capability = "studio_admin_access"

	CapabilityInternalCatalogDenied   Capability = "internal_catalog_denied"
	CapabilityEdflexCatalogDenied     Capability = "edflex_catalog_denied"
	CapabilityCrehanaCatalogDenied    Capability = "crehana_catalog_denied"
	CapabilityAnderspinkCatalogDenied Capability = "anderspink_catalog_denied"
	CapabilityLearnlightCatalogDenied Capability = "learnlight_catalog_denied"
)

// Platform roles exposed through the API. The role is derived from the
// is_staff/is_superuser flags plus the studio-admin capability.
const (
	RoleSuperPlatformAdmin = "Super Platform Admin"
	RolePlatformAdmin      = "Platform Admin"
	RoleStudioAdmin        = "Studio Admin"
	RoleLearner            = "Learner"
)

// Analytics access levels exposed through the API.
const (
	AnalyticsFullAccess = "Full Access"
	AnalyticsRestricted = "Restricted"
)

type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Username  string `json:"username" gorm:"uniqueIndex;not null;size:150"`
	Email     string `json:"email" gorm:"uniqueIndex;not null;size:254"`
	FirstName string `json:"first_name" gorm:"size:150"`
	LastName  string `json:"last_name" gorm:"size:150"`

	IsActive    bool `json:"is_active" gorm:"not null;default:true"`
	IsStaff     bool `json:"is_staff" gorm:"not null;default:false"`
	IsSuperuser bool `json:"is_superuser" gorm:"not null;default:false"`

	Capabilities datatypes.JSONSlice[Capability] `json:"capabilities"`

	Profile UserProfile `json:"profile" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasCapability reports whether the capability is present.
func (u *User) HasCapability(c Capability) bool {
	return slices.Contains(u.Capabilities, c)
}

// AddCapability adds the capability if absent.
func (u *User) AddCapability(c Capability) {
	if !u.HasCapability(c) {
		u.Capabilities = append(u.Capabilities, c)
	}
}

// RemoveCapability removes the capability if present.
func (u *User) RemoveCapability(c Capability) {
	u.Capabilities = slices.DeleteFunc(u.Capabilities, func(have Capability) bool {
		return have == c
	})
}

// PlatformRole derives the API-visible role from the admin flags and the
// studio-admin capability.
func (u *User) PlatformRole() string {
	switch {
	case u.IsSuperuser && u.IsStaff:
		return RoleSuperPlatformAdmin
	case u.IsStaff:
		return RolePlatformAdmin
	case u.HasCapability(CapabilityStudioAdmin):
		return RoleStudioAdmin
	default:
		return RoleLearner
	}
}

// AnalyticsAccess derives the API-visible analytics level, nil when the user
// holds neither analytics capability.
func (u *User) AnalyticsAccess() *string {
	if u.HasCapability(CapabilityAnalyticsLimited) {
		v := AnalyticsRestricted
		return &v
	}
	if u.HasCapability(CapabilityAnalyticsFull) {
		v := AnalyticsFullAccess
		return &v
	}
	return nil
}

// UserProfile is the 1:1 extension of User holding demographic and
// organization attributes. It is created in the same transaction as its user
// and lives exactly as long as the user row.
type UserProfile struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	Name             string     `json:"name" gorm:"size:255"`
	Org              string     `json:"org" gorm:"index;size:255"`
	Language         string     `json:"language" gorm:"size:255"`
	Location         string     `json:"location" gorm:"size:255"`
	YearOfBirth      *int       `json:"year_of_birth"`
	Bio              string     `json:"bio" gorm:"size:3000"`
	Goals            string     `json:"goals"`
	LevelOfEducation string     `json:"level_of_education" gorm:"size:6"`
	Gender           string     `json:"gender" gorm:"size:6"`
	City             string     `json:"city"`
	Country          string     `json:"country" gorm:"size:2"`
	Company          string     `json:"company" gorm:"size:255"`
	EmployeeID       string     `json:"employee_id" gorm:"size:255"`
	HireDate         *time.Time `json:"hire_date"`
	Level            string     `json:"level" gorm:"size:255"`
	JobCode          string     `json:"job_code" gorm:"size:255"`
	JobDescription   string     `json:"job_description" gorm:"size:255"`
	Department       string     `json:"department" gorm:"size:255"`
	Supervisor       string     `json:"supervisor" gorm:"index;size:255"`
	LearningGroup    string     `json:"learning_group" gorm:"size:255"`
	ExemptStatus     bool       `json:"exempt_status" gorm:"not null;default:false"`
	PhoneNumber      string     `json:"phone_number" gorm:"size:50"`
	Comments         string     `json:"comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
