package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edusphere/internship-api/model"
	"gorm.io/gorm"
)

func TestNotificationLifecycle(t *testing.T) {
	db := newTestDB(t)
	f := seedEnrollment(t, db)
	svc := NewNotificationService(db)
	ctx := context.Background()

	svc.Notify(ctx, f.user.ID, model.NotificationTypeSuccess, model.NotificationCategoryProgress,
		"Course completed", "Well done.", &f.course.ID)
	svc.Notify(ctx, f.user.ID, model.NotificationTypeInfo, model.NotificationCategoryGeneral,
		"Welcome", "Glad to have you.", nil)

	count, err := svc.UnreadCount(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("unread = %d, want 2", count)
	}

	notifications, total, err := svc.List(ctx, f.user.ID, false, 1, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(notifications) != 2 {
		t.Fatalf("list = %d rows of %d, want 2 of 2", len(notifications), total)
	}

	if err := svc.MarkRead(ctx, f.user.ID, notifications[0].ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	unread, _, err := svc.List(ctx, f.user.ID, true, 1, 10)
	if err != nil {
		t.Fatalf("List unread failed: %v", err)
	}
	if len(unread) != 1 {
		t.Errorf("unread after MarkRead = %d, want 1", len(unread))
	}

	marked, err := svc.MarkAllRead(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if marked != 1 {
		t.Errorf("MarkAllRead = %d, want 1", marked)
	}
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	f := seedEnrollment(t, db)
	svc := NewNotificationService(db)
	ctx := context.Background()

	svc.Notify(ctx, f.user.ID, model.NotificationTypeInfo, model.NotificationCategoryGeneral, "Hello", "", nil)

	notifications, _, err := svc.List(ctx, f.user.ID, false, 1, 1)
	if err != nil || len(notifications) != 1 {
		t.Fatalf("List failed: %v (%d rows)", err, len(notifications))
	}

	otherUserID := f.user.ID + 1
	if err := svc.MarkRead(ctx, otherUserID, notifications[0].ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("foreign MarkRead: got %v, want ErrRecordNotFound", err)
	}

	count, err := svc.UnreadCount(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("unread = %d, want the notification untouched", count)
	}
}
