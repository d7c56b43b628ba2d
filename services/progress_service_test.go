package services

import (
	"context"
	"errors"
	"testing"

	"github.com/edusphere/internship-api/model"
	"gorm.io/gorm"
)

func newProgressFixture(t *testing.T) (*ProgressService, *gorm.DB, *fixture) {
	t.Helper()

	db := newTestDB(t)
	f := seedEnrollment(t, db)
	certificates := NewCertificateService(db, nil, nil, nil, nil)
	return NewProgressService(db, certificates, NewNotificationService(db)), db, f
}

func TestCompleteTopicIsIdempotent(t *testing.T) {
	svc, db, f := newProgressFixture(t)
	ctx := context.Background()
	topicID := f.courseTopics[0].ID

	first, err := svc.CompleteTopic(ctx, f.user.ID, f.course.ID, topicID)
	if err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	second, err := svc.CompleteTopic(ctx, f.user.ID, f.course.ID, topicID)
	if err != nil {
		t.Fatalf("repeated completion failed: %v", err)
	}

	if first.CompletedCount != 1 || second.CompletedCount != 1 {
		t.Errorf("completed count = %d then %d, want 1 both times", first.CompletedCount, second.CompletedCount)
	}
	if first.TotalCourseTopics != 3 {
		t.Errorf("total course topics = %d, want 3", first.TotalCourseTopics)
	}

	var rows int64
	if err := db.Model(&model.EnrollmentTopic{}).Where("enrollment_id = ?", f.enrollment.ID).Count(&rows).Error; err != nil {
		t.Fatalf("failed to count enrollment topics: %v", err)
	}
	if rows != 1 {
		t.Errorf("enrollment_topics rows = %d, want 1", rows)
	}
}

func TestCompleteTopicRejectsUnknownTopic(t *testing.T) {
	svc, db, f := newProgressFixture(t)
	ctx := context.Background()

	if _, err := svc.CompleteTopic(ctx, f.user.ID, f.course.ID, 99999); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("unknown topic: got %v, want ErrTopicNotFound", err)
	}

	// A topic that exists but belongs to another course is just as invalid
	other := model.Course{Title: "Other", Slug: "other", Published: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	mod := model.CourseModule{CourseID: other.ID, Position: 0, Title: "M", Phase: model.PhaseCourse}
	if err := db.Create(&mod).Error; err != nil {
		t.Fatalf("failed to create module: %v", err)
	}
	topic := model.Topic{ModuleID: mod.ID, Position: 0, Title: "T"}
	if err := db.Create(&topic).Error; err != nil {
		t.Fatalf("failed to create topic: %v", err)
	}

	if _, err := svc.CompleteTopic(ctx, f.user.ID, f.course.ID, topic.ID); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("foreign topic: got %v, want ErrTopicNotFound", err)
	}
}

func TestCompleteTopicRequiresEnrollment(t *testing.T) {
	svc, db, f := newProgressFixture(t)
	ctx := context.Background()

	stranger := model.User{Email: "nobody@example.com", PasswordHash: "x", Name: "Nobody"}
	if err := db.Create(&stranger).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if _, err := svc.CompleteTopic(ctx, stranger.ID, f.course.ID, f.courseTopics[0].ID); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("got %v, want ErrEnrollmentNotFound", err)
	}
	if _, err := svc.CompleteTopic(ctx, 99999, f.course.ID, f.courseTopics[0].ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestCourseCompletionFlipsFlagsExactlyOnce(t *testing.T) {
	svc, db, f := newProgressFixture(t)
	ctx := context.Background()

	var last *CompleteTopicResult
	for _, topic := range f.courseTopics {
		var err error
		last, err = svc.CompleteTopic(ctx, f.user.ID, f.course.ID, topic.ID)
		if err != nil {
			t.Fatalf("completion failed for topic %d: %v", topic.ID, err)
		}
	}

	if !last.CourseCompleted || !last.CertificateIssued || !last.OfferLetterIssued {
		t.Fatalf("final result = %+v, want all completion flags set", last)
	}

	enrollment := reloadEnrollment(t, db, f.enrollment.ID)
	if !enrollment.CourseCompleted || !enrollment.CourseCertificateIssued || !enrollment.OfferLetterIssued {
		t.Fatalf("enrollment flags not persisted: %+v", enrollment)
	}

	if n := countCertificates(t, db, f.enrollment.ID, model.CertificateTypeCourse); n != 1 {
		t.Errorf("course certificates = %d, want 1", n)
	}
	if n := countCertificates(t, db, f.enrollment.ID, model.CertificateTypeOfferLetter); n != 1 {
		t.Errorf("offer letters = %d, want 1", n)
	}

	// Re-submitting the last topic must not mint a second certificate
	again, err := svc.CompleteTopic(ctx, f.user.ID, f.course.ID, f.courseTopics[2].ID)
	if err != nil {
		t.Fatalf("re-submission failed: %v", err)
	}
	if !again.CourseCompleted {
		t.Errorf("re-submission lost the completed flag: %+v", again)
	}
	if n := countCertificates(t, db, f.enrollment.ID, model.CertificateTypeCourse); n != 1 {
		t.Errorf("course certificates after retry = %d, want 1", n)
	}
}

func TestInternshipTopicsDoNotCountTowardCourseCompletion(t *testing.T) {
	svc, db, f := newProgressFixture(t)
	ctx := context.Background()

	result, err := svc.CompleteTopic(ctx, f.user.ID, f.course.ID, f.internshipTopics[0].ID)
	if err != nil {
		t.Fatalf("internship topic completion failed: %v", err)
	}

	if result.TotalCourseTopics != 3 {
		t.Errorf("total course topics = %d, want 3 (internship topics excluded)", result.TotalCourseTopics)
	}
	if result.CompletedCount != 0 {
		t.Errorf("completed course topics = %d, want 0", result.CompletedCount)
	}
	if result.CourseCompleted {
		t.Error("internship topic flipped course_completed")
	}

	enrollment := reloadEnrollment(t, db, f.enrollment.ID)
	if enrollment.CourseCompleted {
		t.Error("course_completed persisted from internship topic")
	}
}

func TestGetProgress(t *testing.T) {
	svc, _, f := newProgressFixture(t)
	ctx := context.Background()

	if _, err := svc.GetProgress(ctx, f.user.ID, 99999); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("got %v, want ErrEnrollmentNotFound", err)
	}

	for _, topic := range f.courseTopics[:2] {
		if _, err := svc.CompleteTopic(ctx, f.user.ID, f.course.ID, topic.ID); err != nil {
			t.Fatalf("completion failed: %v", err)
		}
	}

	progress, err := svc.GetProgress(ctx, f.user.ID, f.course.ID)
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if progress.CompletedCount != 2 || progress.TotalCourseTopics != 3 {
		t.Errorf("progress = %d/%d, want 2/3", progress.CompletedCount, progress.TotalCourseTopics)
	}
	if len(progress.CompletedTopicIDs) != 2 {
		t.Errorf("completed topic ids = %v, want 2 entries", progress.CompletedTopicIDs)
	}
	if progress.Enrollment.ID != f.enrollment.ID {
		t.Errorf("enrollment id = %d, want %d", progress.Enrollment.ID, f.enrollment.ID)
	}
}
