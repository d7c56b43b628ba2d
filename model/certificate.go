package model

import (
	"time"

	"gorm.io/gorm"
)

// Certificate types
const (
	CertificateTypeCourse      = "course"
	CertificateTypeOfferLetter = "offer_letter"
	CertificateTypeInternship  = "internship"
)

// ValidCertificateType reports whether t names a known certificate type
func ValidCertificateType(t string) bool {
	switch t {
	case CertificateTypeCourse, CertificateTypeOfferLetter, CertificateTypeInternship:
		return true
	}
	return false
}

// Certificate is an issued PDF artifact. The row exists only once the
// corresponding enrollment flag has been set; its string ID is the public
// verification handle printed on the document.
type Certificate struct {
	ID           string         `gorm:"primaryKey;type:varchar(64)" json:"id"` // uuid
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	EnrollmentID uint           `gorm:"not null;index;uniqueIndex:idx_enrollment_type,priority:1" json:"enrollment_id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	CourseID     uint           `gorm:"not null;index" json:"course_id"`
	Type         string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_enrollment_type,priority:2" json:"type"`
	IssuedAt     time.Time      `gorm:"not null" json:"issued_at"`
	StorageKey   string         `gorm:"type:varchar(255)" json:"storage_key,omitempty"` // object storage key, when uploaded

	// Relationships
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
	User       User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course     Course     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
