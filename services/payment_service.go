package services

import (
	"context"
	"fmt"
	"time"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services/razorpay"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentService creates Razorpay orders and turns verified payments into
// enrollments. Verification is the only path that creates an enrollment, so
// an unpaid student can never hold one.
type PaymentService struct {
	db            *gorm.DB
	gateway       *razorpay.Client
	notifications *NotificationService
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, gateway *razorpay.Client, notifications *NotificationService) *PaymentService {
	return &PaymentService{
		db:            db,
		gateway:       gateway,
		notifications: notifications,
	}
}

// OrderResult is returned to the client to drive the checkout flow
type OrderResult struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id,omitempty"`
}

// CreateOrder creates a payment order for a published course. An existing
// paid enrollment short-circuits with a conflict.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, courseID uint) (*OrderResult, error) {
	if s.gateway == nil || !s.gateway.IsConfigured() {
		return nil, ErrPaymentsNotConfigured
	}

	db := s.db.WithContext(ctx)

	var course model.Course
	if err := db.Where("id = ? AND published = ?", courseID, true).First(&course).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	var existing model.Enrollment
	err := db.Where("user_id = ? AND course_id = ? AND is_paid = ?", userID, courseID, true).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateEnrollment
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	receipt := fmt.Sprintf("enr_%d_%d_%d", userID, courseID, time.Now().Unix())
	order, err := s.gateway.CreateOrder(ctx, course.Price, course.Currency, receipt)
	if err != nil {
		return nil, err
	}

	payment := model.CoursePayment{
		UserID:          userID,
		CourseID:        courseID,
		RazorpayOrderID: order.ID,
		Amount:          course.Price,
		Currency:        course.Currency,
		Status:          model.PaymentStatusPending,
	}
	if err := db.Create(&payment).Error; err != nil {
		return nil, err
	}

	return &OrderResult{
		OrderID:  order.ID,
		Amount:   course.Price,
		Currency: course.Currency,
	}, nil
}

// VerifyPayment validates the checkout signature and creates the paid
// enrollment. The enrollment insert is insert-or-ignore on (user, course), so
// replayed callbacks cannot create duplicates.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID uint, orderID, paymentID, signature string) (*model.Enrollment, error) {
	if s.gateway == nil || !s.gateway.IsConfigured() {
		return nil, ErrPaymentsNotConfigured
	}

	db := s.db.WithContext(ctx)

	var payment model.CoursePayment
	if err := db.Where("razorpay_order_id = ? AND user_id = ?", orderID, userID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		db.Model(&payment).Updates(map[string]interface{}{
			"status":              model.PaymentStatusFailed,
			"razorpay_payment_id": paymentID,
		})
		return nil, ErrInvalidSignature
	}

	now := time.Now()

	if err := db.Model(&payment).Updates(map[string]interface{}{
		"status":              model.PaymentStatusCompleted,
		"razorpay_payment_id": paymentID,
	}).Error; err != nil {
		return nil, err
	}

	enrollment := model.Enrollment{
		UserID:            userID,
		CourseID:          payment.CourseID,
		IsPaid:            true,
		PaidAt:            &now,
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment).Error; err != nil {
		return nil, err
	}

	// Re-read in case a replayed callback lost the insert race
	var stored model.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, payment.CourseID).First(&stored).Error; err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.Notify(ctx, userID, model.NotificationTypeSuccess, model.NotificationCategoryPayment,
			"Payment received",
			"Your enrollment is active. Start with the first course module.",
			&payment.CourseID)
	}

	return &stored, nil
}

// PaymentsForUser lists the user's payment history, newest first
func (s *PaymentService) PaymentsForUser(ctx context.Context, userID uint) ([]model.CoursePayment, error) {
	var payments []model.CoursePayment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
