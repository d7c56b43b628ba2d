package model

import (
	"time"

	"gorm.io/gorm"
)

// AicteInternship is an admin-entered allowlist record for an externally
// issued AICTE internship ID. A record is consumed at most once: consumption
// is a conditional update keyed on is_used = false, so two students racing on
// the same ID can never both win.
type AicteInternship struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	AicteID      string         `gorm:"uniqueIndex;not null;type:varchar(100)" json:"aicte_id"`
	Email        string         `gorm:"not null;index" json:"email"` // must match the consuming student's email
	CourseID     uint           `gorm:"not null;index" json:"course_id"`
	IsUsed       bool           `gorm:"default:false;index" json:"is_used"`
	UsedByUserID *uint          `gorm:"index" json:"used_by_user_id,omitempty"`
	UsedAt       *time.Time     `json:"used_at,omitempty"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	UsedBy *User  `gorm:"foreignKey:UsedByUserID;constraint:OnDelete:SET NULL" json:"used_by,omitempty"`
}

// TableName specifies the table name for AicteInternship
func (AicteInternship) TableName() string {
	return "aicte_internships"
}
