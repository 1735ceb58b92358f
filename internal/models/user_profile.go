package models

import "time"

// Class names a learner can enrol under.
const (
	ClassSpring2026 = "26년도 1학기"
	ClassGeneral    = "일반인"
)

// UserProfile stores the cohort a user belongs to.
type UserProfile struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Name      string    `gorm:"size:255" json:"name"`
	ClassName string    `gorm:"size:64;not null" json:"class_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidClassName reports whether name is an offered class.
func IsValidClassName(name string) bool {
	return name == ClassSpring2026 || name == ClassGeneral
}
