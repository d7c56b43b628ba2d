package model

import (
	"time"

	"gorm.io/gorm"
)

// College represents a partner institution whose students can register
type College struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Code      string         `gorm:"uniqueIndex;not null" json:"code"` // e.g., "GECB", "SATI"
	City      string         `gorm:"type:varchar(100)" json:"city"`
	State     string         `gorm:"type:varchar(100)" json:"state"`

	// Relationships
	Departments []Department     `gorm:"foreignKey:CollegeID;constraint:OnDelete:CASCADE" json:"departments,omitempty"`
	Seats       []RollNumberSeat `gorm:"foreignKey:CollegeID;constraint:OnDelete:CASCADE" json:"-"`
	Users       []User           `gorm:"foreignKey:CollegeID" json:"-"`
}

// Department represents an academic department within a college
type Department struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CollegeID uint           `gorm:"not null;index" json:"college_id"`
	Name      string         `gorm:"not null" json:"name"`
	Code      string         `gorm:"not null" json:"code"` // e.g., "CSE", "ECE"

	// Relationships
	College College          `gorm:"foreignKey:CollegeID;constraint:OnDelete:CASCADE" json:"college,omitempty"`
	Seats   []RollNumberSeat `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// RollNumberSeat is a pre-generated roll number a student claims at
// registration. A seat is claimed at most once; the claim is a conditional
// update keyed on claimed = false so two registrations can never share a seat.
type RollNumberSeat struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	CollegeID       uint           `gorm:"not null;index;uniqueIndex:idx_college_roll,priority:1" json:"college_id"`
	DepartmentID    uint           `gorm:"not null;index" json:"department_id"`
	RollNumber      string         `gorm:"not null;uniqueIndex:idx_college_roll,priority:2" json:"roll_number"`
	Claimed         bool           `gorm:"default:false;index" json:"claimed"`
	ClaimedByUserID *uint          `gorm:"index" json:"claimed_by_user_id,omitempty"`
	ClaimedAt       *time.Time     `json:"claimed_at,omitempty"`

	// Relationships
	College    College    `gorm:"foreignKey:CollegeID;constraint:OnDelete:CASCADE" json:"college,omitempty"`
	Department Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE" json:"department,omitempty"`
	ClaimedBy  *User      `gorm:"foreignKey:ClaimedByUserID;constraint:OnDelete:SET NULL" json:"claimed_by,omitempty"`
}

// TableName specifies the table name for RollNumberSeat
func (RollNumberSeat) TableName() string {
	return "roll_number_seats"
}
