package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment is the per-student, per-course record the progress engine
// operates on. Every flag is monotonic: once set it is never cleared.
type Enrollment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;index;uniqueIndex:idx_user_course,priority:1" json:"user_id"`
	CourseID  uint           `gorm:"not null;index;uniqueIndex:idx_user_course,priority:2" json:"course_id"`

	// Payment
	IsPaid            bool       `gorm:"default:false" json:"is_paid"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	RazorpayOrderID   string     `gorm:"type:varchar(100)" json:"razorpay_order_id"`
	RazorpayPaymentID string     `gorm:"type:varchar(100)" json:"razorpay_payment_id"`

	// Course phase
	CourseCompleted         bool `gorm:"default:false" json:"course_completed"`
	CourseCertificateIssued bool `gorm:"default:false" json:"course_certificate_issued"`
	OfferLetterIssued       bool `gorm:"default:false" json:"offer_letter_issued"`

	// Internship unlock
	AicteInternshipID    string     `gorm:"type:varchar(100)" json:"aicte_internship_id"`
	AicteVerified        bool       `gorm:"default:false" json:"aicte_verified"`
	InternshipUnlocked   bool       `gorm:"default:false" json:"internship_unlocked"`
	InternshipVerifiedAt *time.Time `json:"internship_verified_at,omitempty"`
	InternshipStartedAt  *time.Time `json:"internship_started_at,omitempty"`
	InternshipEndsAt     *time.Time `json:"internship_ends_at,omitempty"`

	// Internship phase
	InternshipGithubRepo        string     `gorm:"type:varchar(500);default:''" json:"internship_github_repo"`
	InternshipReportKey         string     `gorm:"type:varchar(255)" json:"internship_report_key,omitempty"`
	InternshipSubmittedAt       *time.Time `json:"internship_submitted_at,omitempty"`
	InternshipCompleted         bool       `gorm:"default:false" json:"internship_completed"`
	InternshipCertificateIssued bool       `gorm:"default:false" json:"internship_certificate_issued"`

	// Relationships
	User            User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course          Course            `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	CompletedTopics []EnrollmentTopic `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"completed_topics,omitempty"`
	Certificates    []Certificate     `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// EnrollmentTopic marks one topic as completed for one enrollment. The
// composite primary key gives the completed set its uniqueness; inserting an
// existing pair is a no-op (ON CONFLICT DO NOTHING), which is what makes
// topic completion idempotent.
type EnrollmentTopic struct {
	EnrollmentID uint      `gorm:"primaryKey" json:"enrollment_id"`
	TopicID      uint      `gorm:"primaryKey" json:"topic_id"`
	CompletedAt  time.Time `gorm:"autoCreateTime" json:"completed_at"`

	// Relationships
	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
	Topic      Topic      `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"topic,omitempty"`
}

// TableName specifies the table name for EnrollmentTopic
func (EnrollmentTopic) TableName() string {
	return "enrollment_topics"
}
