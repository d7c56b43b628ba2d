package services

import (
	"context"
	"fmt"
	"log"

	"github.com/edusphere/internship-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService applies topic-completion transitions to enrollments.
// All writes are conditional single-statement updates, so concurrent calls
// for the same enrollment cannot lose updates: the completed-topic set is an
// insert-or-ignore and the course flags flip at most once.
type ProgressService struct {
	db            *gorm.DB
	settings      *SettingsService
	certificates  *CertificateService
	notifications *NotificationService
}

// NewProgressService creates a new progress service
func NewProgressService(db *gorm.DB, certificates *CertificateService, notifications *NotificationService) *ProgressService {
	return &ProgressService{
		db:            db,
		settings:      NewSettingsService(db),
		certificates:  certificates,
		notifications: notifications,
	}
}

// CompleteTopicResult is returned after a topic-completion transition
type CompleteTopicResult struct {
	CompletedCount    int64 `json:"completed_count"`
	TotalCourseTopics int64 `json:"total_course_topics"`
	CourseCompleted   bool  `json:"course_completed"`
	CertificateIssued bool  `json:"certificate_issued"`
	OfferLetterIssued bool  `json:"offer_letter_issued"`
}

// CompleteTopic marks a topic as completed for the student's enrollment.
// Re-submitting an already-completed topic is a no-op. When the last
// course-phase topic lands, course_completed, course_certificate_issued and
// offer_letter_issued flip together, exactly once.
func (s *ProgressService) CompleteTopic(ctx context.Context, userID, courseID, topicID uint) (*CompleteTopicResult, error) {
	db := s.db.WithContext(ctx)

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var enrollment model.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	// The topic must belong to the requested course
	var topicCount int64
	err := db.Model(&model.Topic{}).
		Joins("JOIN course_modules ON course_modules.id = topics.module_id").
		Where("topics.id = ? AND course_modules.course_id = ?", topicID, courseID).
		Count(&topicCount).Error
	if err != nil {
		return nil, err
	}
	if topicCount == 0 {
		return nil, ErrTopicNotFound
	}

	// Insert-or-ignore keeps the completed set idempotent under retries and
	// concurrent submissions
	entry := model.EnrollmentTopic{
		EnrollmentID: enrollment.ID,
		TopicID:      topicID,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		return nil, err
	}

	completed, total, err := s.coursePhaseProgress(ctx, enrollment.ID, courseID)
	if err != nil {
		return nil, err
	}

	result := &CompleteTopicResult{
		CompletedCount:    completed,
		TotalCourseTopics: total,
		CourseCompleted:   enrollment.CourseCompleted,
		CertificateIssued: enrollment.CourseCertificateIssued,
		OfferLetterIssued: enrollment.OfferLetterIssued,
	}

	if total > 0 && completed >= total && !enrollment.CourseCompleted {
		if _, err := s.markCourseCompleted(ctx, &enrollment, &user); err != nil {
			return nil, err
		}
		// Reload flags: even on a lost race the winner has set them by now
		if err := db.First(&enrollment, enrollment.ID).Error; err != nil {
			return nil, err
		}
		result.CourseCompleted = enrollment.CourseCompleted
		result.CertificateIssued = enrollment.CourseCertificateIssued
		result.OfferLetterIssued = enrollment.OfferLetterIssued
	}

	return result, nil
}

// coursePhaseProgress counts completed and total topics in course-phase modules
func (s *ProgressService) coursePhaseProgress(ctx context.Context, enrollmentID, courseID uint) (completed, total int64, err error) {
	db := s.db.WithContext(ctx)

	err = db.Model(&model.Topic{}).
		Joins("JOIN course_modules ON course_modules.id = topics.module_id").
		Where("course_modules.course_id = ? AND course_modules.phase = ?", courseID, model.PhaseCourse).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	err = db.Model(&model.EnrollmentTopic{}).
		Joins("JOIN topics ON topics.id = enrollment_topics.topic_id").
		Joins("JOIN course_modules ON course_modules.id = topics.module_id").
		Where("enrollment_topics.enrollment_id = ? AND course_modules.course_id = ? AND course_modules.phase = ?",
			enrollmentID, courseID, model.PhaseCourse).
		Count(&completed).Error
	if err != nil {
		return 0, 0, err
	}

	return completed, total, nil
}

// markCourseCompleted flips the course-phase flags at most once. The WHERE
// clause on course_completed = false makes concurrent completions race-safe:
// only one caller observes RowsAffected = 1 and issues the certificates.
func (s *ProgressService) markCourseCompleted(ctx context.Context, enrollment *model.Enrollment, user *model.User) (bool, error) {
	db := s.db.WithContext(ctx)

	res := db.Model(&model.Enrollment{}).
		Where("id = ? AND course_completed = ?", enrollment.ID, false).
		Updates(map[string]interface{}{
			"course_completed":          true,
			"course_certificate_issued": true,
			"offer_letter_issued":       true,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Another request got there first; flags are already set
		return false, nil
	}

	enrollment.CourseCompleted = true
	enrollment.CourseCertificateIssued = true
	enrollment.OfferLetterIssued = true

	if _, err := s.certificates.EnsureIssued(ctx, enrollment, model.CertificateTypeCourse); err != nil {
		log.Printf("Failed to issue course certificate for enrollment %d: %v", enrollment.ID, err)
	}
	if _, err := s.certificates.EnsureIssued(ctx, enrollment, model.CertificateTypeOfferLetter); err != nil {
		log.Printf("Failed to issue offer letter for enrollment %d: %v", enrollment.ID, err)
	}

	if s.notifications != nil {
		s.notifications.Notify(ctx, user.ID, model.NotificationTypeSuccess, model.NotificationCategoryProgress,
			"Course completed",
			"Congratulations! You finished all course modules. Your certificate and offer letter are ready.",
			&enrollment.CourseID)
	}

	return true, nil
}

// QuizResult is returned after server-side quiz grading
type QuizResult struct {
	TotalQuestions int  `json:"total_questions"`
	CorrectAnswers int  `json:"correct_answers"`
	ScorePercent   int  `json:"score_percent"`
	Passed         bool `json:"passed"`
}

// GradeQuiz grades submitted option indexes against the topic's stored
// answers. Correct indexes never leave the server; clients only learn the
// score and pass/fail at the configured threshold.
func (s *ProgressService) GradeQuiz(ctx context.Context, topicID uint, answers []int) (*QuizResult, error) {
	db := s.db.WithContext(ctx)

	var questions []model.QuizQuestion
	if err := db.Where("topic_id = ?", topicID).Order("position ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrTopicNotFound
	}
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("%w: got %d answers for %d questions", ErrAnswerCount, len(answers), len(questions))
	}

	correct := 0
	for i, q := range questions {
		if answers[i] == q.CorrectIndex {
			correct++
		}
	}

	percent := correct * 100 / len(questions)
	return &QuizResult{
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		ScorePercent:   percent,
		Passed:         percent >= s.settings.QuizPassPercent(ctx),
	}, nil
}

// EnrollmentProgress summarizes one enrollment for the student dashboard
type EnrollmentProgress struct {
	Enrollment        model.Enrollment `json:"enrollment"`
	CompletedCount    int64            `json:"completed_count"`
	TotalCourseTopics int64            `json:"total_course_topics"`
	CompletedTopicIDs []uint           `json:"completed_topic_ids"`
}

// GetProgress returns the completion state for one (user, course) pair
func (s *ProgressService) GetProgress(ctx context.Context, userID, courseID uint) (*EnrollmentProgress, error) {
	db := s.db.WithContext(ctx)

	var enrollment model.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	completed, total, err := s.coursePhaseProgress(ctx, enrollment.ID, courseID)
	if err != nil {
		return nil, err
	}

	var topicIDs []uint
	err = db.Model(&model.EnrollmentTopic{}).
		Where("enrollment_id = ?", enrollment.ID).
		Order("completed_at ASC").
		Pluck("topic_id", &topicIDs).Error
	if err != nil {
		return nil, err
	}

	return &EnrollmentProgress{
		Enrollment:        enrollment,
		CompletedCount:    completed,
		TotalCourseTopics: total,
		CompletedTopicIDs: topicIDs,
	}, nil
}
