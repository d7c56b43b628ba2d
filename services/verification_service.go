package services

import (
	"context"
	"strings"
	"time"

	"github.com/edusphere/internship-api/model"
	"gorm.io/gorm"
)

// VerificationService consumes admin-entered AICTE internship IDs and
// unlocks the internship phase of an enrollment. Consumption is a conditional
// update keyed on is_used = false, so the same ID can never unlock two
// enrollments.
type VerificationService struct {
	db            *gorm.DB
	settings      *SettingsService
	notifications *NotificationService
}

// NewVerificationService creates a new verification service
func NewVerificationService(db *gorm.DB, notifications *NotificationService) *VerificationService {
	return &VerificationService{
		db:            db,
		settings:      NewSettingsService(db),
		notifications: notifications,
	}
}

// VerifyResult is returned after a successful unlock
type VerifyResult struct {
	AicteID             string     `json:"aicte_id"`
	InternshipUnlocked  bool       `json:"internship_unlocked"`
	InternshipStartedAt *time.Time `json:"internship_started_at"`
	InternshipEndsAt    *time.Time `json:"internship_ends_at"`
}

// VerifyAndUnlock checks the submitted AICTE ID against the allowlist and,
// when every precondition holds, consumes the record and unlocks the
// internship phase. Checks run in a fixed order so error responses are
// deterministic: existence, then email binding, then course binding, then
// usage. The already-unlocked check comes first so a retried request cannot
// burn a second ID.
func (s *VerificationService) VerifyAndUnlock(ctx context.Context, userID, courseID uint, aicteID string) (*VerifyResult, error) {
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
	if enrollment.InternshipUnlocked {
		return nil, ErrAlreadyUnlocked
	}

	var record model.AicteInternship
	if err := db.Where("aicte_id = ?", aicteID).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAicteNotFound
		}
		return nil, err
	}

	if !strings.EqualFold(record.Email, user.Email) {
		return nil, ErrAicteEmailMismatch
	}
	if record.CourseID != courseID {
		return nil, ErrAicteCourseMismatch
	}
	if record.IsUsed {
		return nil, ErrAicteAlreadyUsed
	}

	now := time.Now()
	durationDays := s.settings.InternshipDurationDays(ctx)
	endsAt := now.AddDate(0, 0, durationDays)

	// Consume and unlock commit together: a failed unlock rolls the consume
	// back, so the ID is never burned without the enrollment opening up.
	// The WHERE on is_used = false makes the consume first-writer-wins under
	// concurrent submissions of the same ID.
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.AicteInternship{}).
			Where("id = ? AND is_used = ?", record.ID, false).
			Updates(map[string]interface{}{
				"is_used":         true,
				"used_by_user_id": userID,
				"used_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAicteAlreadyUsed
		}

		// Guarded as well; if a parallel request unlocked the enrollment
		// between our read and here, it also consumed a different ID inside
		// its own transaction, so this one must not be spent
		res = tx.Model(&model.Enrollment{}).
			Where("id = ? AND internship_unlocked = ?", enrollment.ID, false).
			Updates(map[string]interface{}{
				"aicte_internship_id":    aicteID,
				"aicte_verified":         true,
				"internship_unlocked":    true,
				"internship_verified_at": now,
				"internship_started_at":  now,
				"internship_ends_at":     endsAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyUnlocked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.Notify(ctx, userID, model.NotificationTypeSuccess, model.NotificationCategoryInternship,
			"Internship unlocked",
			"Your AICTE internship ID was verified. The internship phase is now available.",
			&courseID)
	}

	return &VerifyResult{
		AicteID:             aicteID,
		InternshipUnlocked:  true,
		InternshipStartedAt: &now,
		InternshipEndsAt:    &endsAt,
	}, nil
}
