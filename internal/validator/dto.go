package validator

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day on the wire, "2006-01-02" with no time component,
// matching how HR feeds express hire dates.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// TimePtr converts an optional Date into the *time.Time the profile stores.
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

// OptionalString distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present in the request body.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// CreateUserRequest carries the directory record fields for user creation.
// Identity and display-name fields are mandatory on create.
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,username_format"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Name      string `json:"name" validate:"required,max=255"`

	Org              string     `json:"org" validate:"omitempty,max=255"`
	Language         string     `json:"language" validate:"omitempty,max=255"`
	Location         string     `json:"location" validate:"omitempty,max=255"`
	YearOfBirth      *int       `json:"year_of_birth" validate:"omitempty,year_of_birth"`
	Bio              string     `json:"bio" validate:"omitempty,max=3000"`
	Goals            string     `json:"goals"`
	LevelOfEducation string     `json:"level_of_education" validate:"omitempty,max=6"`
	Gender           string     `json:"gender" validate:"omitempty,max=6"`
	City             string     `json:"city"`
	Country          string     `json:"country" validate:"omitempty,len=2"`
	Company          string     `json:"company" validate:"omitempty,max=255"`
	EmployeeID       string     `json:"employee_id" validate:"omitempty,max=255"`
	HireDate         *Date      `json:"hire_date"`
	Level            string     `json:"level" validate:"omitempty,max=255"`
	JobCode          string     `json:"job_code" validate:"omitempty,max=255"`
	JobDescription   string     `json:"job_description" validate:"omitempty,max=255"`
	Department       string     `json:"department" validate:"omitempty,max=255"`
	Supervisor       string     `json:"supervisor" validate:"omitempty,max=255"`
	LearningGroup    string     `json:"learning_group" validate:"omitempty,max=255"`
	ExemptStatus     *bool      `json:"exempt_status"`
	PhoneNumber      string     `json:"phone_number" validate:"omitempty,max=50"`
	Comments         string     `json:"comments"`

	AnalyticsAccess OptionalString `json:"analytics_access"`
	PlatformRole    *string        `json:"platform_role" validate:"omitempty,platform_role"`

	InternalCatalogAccess   *bool `json:"internal_catalog_access"`
	EdflexCatalogAccess     *bool `json:"edflex_catalog_access"`
	CrehanaCatalogAccess    *bool `json:"crehana_catalog_access"`
	AnderspinkCatalogAccess *bool `json:"anderspink_catalog_access"`
	LearnlightCatalogAccess *bool `json:"learnlight_catalog_access"`
}

// UpdateUserRequest carries a sparse directory record mutation: only fields
// present in the body are applied.
type UpdateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,username_format"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Name      *string `json:"name" validate:"omitempty,max=255"`

	Org              *string    `json:"org" validate:"omitempty,max=255"`
	Language         *string    `json:"language" validate:"omitempty,max=255"`
	Location         *string    `json:"location" validate:"omitempty,max=255"`
	YearOfBirth      *int       `json:"year_of_birth" validate:"omitempty,year_of_birth"`
	Bio              *string    `json:"bio" validate:"omitempty,max=3000"`
	Goals            *string    `json:"goals"`
	LevelOfEducation *string    `json:"level_of_education" validate:"omitempty,max=6"`
	Gender           *string    `json:"gender" validate:"omitempty,max=6"`
	City             *string    `json:"city"`
	Country          *string    `json:"country" validate:"omitempty,len=2"`
	Company          *string    `json:"company" validate:"omitempty,max=255"`
	EmployeeID       *string    `json:"employee_id" validate:"omitempty,max=255"`
	HireDate         *Date      `json:"hire_date"`
	Level            *string    `json:"level" validate:"omitempty,max=255"`
	JobCode          *string    `json:"job_code" validate:"omitempty,max=255"`
	JobDescription   *string    `json:"job_description" validate:"omitempty,max=255"`
	Department       *string    `json:"department" validate:"omitempty,max=255"`
	Supervisor       *string    `json:"supervisor" validate:"omitempty,max=255"`
	LearningGroup    *string    `json:"learning_group" validate:"omitempty,max=255"`
	ExemptStatus     *bool      `json:"exempt_status"`
	PhoneNumber      *string    `json:"phone_number" validate:"omitempty,max=50"`
	Comments         *string    `json:"comments"`

	AnalyticsAccess OptionalString `json:"analytics_access"`
	PlatformRole    *string        `json:"platform_role" validate:"omitempty,platform_role"`

	InternalCatalogAccess   *bool `json:"internal_catalog_access"`
	EdflexCatalogAccess     *bool `json:"edflex_catalog_access"`
	CrehanaCatalogAccess    *bool `json:"crehana_catalog_access"`
	AnderspinkCatalogAccess *bool `json:"anderspink_catalog_access"`
	LearnlightCatalogAccess *bool `json:"learnlight_catalog_access"`
}
