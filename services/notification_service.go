package services

import (
	"context"
	"log"

	"github.com/edusphere/internship-api/model"
	"gorm.io/gorm"
)

// NotificationService manages in-app user notifications
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify creates a notification for a user. Failures are logged, not
// returned: notifications are best-effort and never abort the transition
// that triggered them.
func (s *NotificationService) Notify(ctx context.Context, userID uint, notifType model.NotificationType, category model.NotificationCategory, title, message string, courseID *uint) {
	notification := model.UserNotification{
		UserID:   userID,
		Type:     notifType,
		Category: category,
		Title:    title,
		Message:  message,
		CourseID: courseID,
	}
	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		log.Printf("Failed to create notification for user %d: %v", userID, err)
	}
}

// List returns a page of the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, page, limit int) ([]model.UserNotification, int64, error) {
	db := s.db.WithContext(ctx).Model(&model.UserNotification{}).Where("user_id = ?", userID)
	if unreadOnly {
		db = db.Where("read = ?", false)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.UserNotification
	err := db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// UnreadCount returns the number of unread notifications for a user
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification as read. Scoped to the user so one student
// cannot touch another's notifications.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
