package models

import (
	"time"

	"gorm.io/datatypes"
)

// CourseOverview mirrors the course catalog rows the host LMS maintains.
// This service only reads them, scoped by organization.
type CourseOverview struct {
	ID          string `json:"id" gorm:"primaryKey;size:255"`
	DisplayName string `json:"display_name" gorm:"not null;size:255"`
	Org         string `json:"org" gorm:"index;not null;size:255"`

	Start            *time.Time `json:"start"`
	ShortDescription string     `json:"short_description"`
	Effort           string     `json:"effort" gorm:"size:255"`
	Language         string     `json:"language" gorm:"size:50"`
	CourseCategory   string     `json:"course_category" gorm:"size:255"`

	Instructors datatypes.JSONSlice[string] `json:"instructors"`

	CardImagePath   string `json:"card_image_path" gorm:"size:500"`
	BannerImagePath string `json:"banner_image_path" gorm:"size:500"`

	Modified time.Time `json:"modified" gorm:"autoUpdateTime"`
}

func (CourseOverview) TableName() string {
	return "course_overviews"
}
