package model

import (
	"time"

	"gorm.io/gorm"
)

// CoursePayment represents a payment record for course enrollment
type CoursePayment struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	CourseID          uint           `gorm:"not null;index" json:"course_id"`
	RazorpayOrderID   string         `gorm:"type:varchar(100);uniqueIndex" json:"razorpay_order_id"`
	RazorpayPaymentID string         `gorm:"type:varchar(100)" json:"razorpay_payment_id"`
	Amount            int64          `gorm:"not null" json:"amount"` // smallest currency unit (paise)
	Currency          string         `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status            string         `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending, completed, failed
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// TableName specifies the table name for CoursePayment
func (CoursePayment) TableName() string {
	return "course_payments"
}
