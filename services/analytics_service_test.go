package services

import (
	"context"
	"testing"
	"time"

	"github.com/edusphere/internship-api/model"
)

func TestDashboardAggregates(t *testing.T) {
	db := newTestDB(t)
	f := seedEnrollment(t, db)
	svc := NewAnalyticsService(db, nil)
	ctx := context.Background()

	// One enrollment through the whole funnel, one stuck at payment
	err := db.Model(&model.Enrollment{}).Where("id = ?", f.enrollment.ID).
		Updates(map[string]interface{}{
			"course_completed":       true,
			"internship_unlocked":    true,
			"internship_github_repo": "https://github.com/asha/project",
		}).Error
	if err != nil {
		t.Fatalf("failed to advance enrollment: %v", err)
	}

	second := model.User{Email: "ravi.kumar@example.com", PasswordHash: "x", Name: "Ravi Kumar"}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if err := db.Create(&model.Enrollment{UserID: second.ID, CourseID: f.course.ID, IsPaid: true}).Error; err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}

	payments := []model.CoursePayment{
		{UserID: f.user.ID, CourseID: f.course.ID, RazorpayOrderID: "order_a", Amount: 499900, Status: model.PaymentStatusCompleted},
		{UserID: second.ID, CourseID: f.course.ID, RazorpayOrderID: "order_b", Amount: 499900, Status: model.PaymentStatusCompleted},
		{UserID: second.ID, CourseID: f.course.ID, RazorpayOrderID: "order_c", Amount: 499900, Status: model.PaymentStatusFailed},
	}
	for i := range payments {
		if err := db.Create(&payments[i]).Error; err != nil {
			t.Fatalf("failed to create payment: %v", err)
		}
	}

	now := time.Now()
	used := model.AicteInternship{AicteID: "AICTE/2026/A1", Email: f.user.Email, CourseID: f.course.ID, IsUsed: true, UsedByUserID: &f.user.ID, UsedAt: &now}
	spare := model.AicteInternship{AicteID: "AICTE/2026/A2", Email: second.Email, CourseID: f.course.ID}
	if err := db.Create(&used).Error; err != nil {
		t.Fatalf("failed to create allowlist record: %v", err)
	}
	if err := db.Create(&spare).Error; err != nil {
		t.Fatalf("failed to create allowlist record: %v", err)
	}

	dashboard, err := svc.GetDashboard(ctx)
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}

	if dashboard.TotalStudents != 2 {
		t.Errorf("students = %d, want 2", dashboard.TotalStudents)
	}
	if dashboard.TotalEnrollments != 2 || dashboard.PaidEnrollments != 2 {
		t.Errorf("enrollments = %d paid %d, want 2/2", dashboard.TotalEnrollments, dashboard.PaidEnrollments)
	}
	if dashboard.CoursesCompleted != 1 || dashboard.InternshipsUnlocked != 1 || dashboard.InternshipsSubmitted != 1 {
		t.Errorf("funnel = %d/%d/%d, want 1/1/1",
			dashboard.CoursesCompleted, dashboard.InternshipsUnlocked, dashboard.InternshipsSubmitted)
	}
	if dashboard.RevenuePaise != 999800 {
		t.Errorf("revenue = %d, want 999800 (failed payments excluded)", dashboard.RevenuePaise)
	}
	if dashboard.AicteIDsTotal != 2 || dashboard.AicteIDsUsed != 1 {
		t.Errorf("aicte ids = %d used %d, want 2/1", dashboard.AicteIDsTotal, dashboard.AicteIDsUsed)
	}

	if len(dashboard.CourseStats) != 1 {
		t.Fatalf("course stats = %d rows, want 1", len(dashboard.CourseStats))
	}
	stat := dashboard.CourseStats[0]
	if stat.CourseID != f.course.ID || stat.Enrollments != 2 || stat.CoursesCompleted != 1 {
		t.Errorf("course stat = %+v", stat)
	}
}

func TestDashboardEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnalyticsService(db, nil)

	dashboard, err := svc.GetDashboard(context.Background())
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if dashboard.TotalEnrollments != 0 || dashboard.RevenuePaise != 0 {
		t.Errorf("empty dashboard = %+v", dashboard)
	}
}
