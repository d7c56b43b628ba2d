package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/edusphere/internship-api/model"
)

// IssueDueInternshipCertificates issues certificates for submitted
// internships whose window has elapsed. The submission path issues
// immediately when the window is already over; this job covers enrollments
// that submitted early and waited for internship_ends_at.
func (m *CronManager) IssueDueInternshipCertificates() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	jobName := "issue_due_internship_certificates"

	var due []model.Enrollment
	err := m.db.Where(
		"internship_completed = ? AND internship_certificate_issued = ? AND internship_ends_at IS NOT NULL AND internship_ends_at <= ?",
		true, false, time.Now(),
	).Find(&due).Error
	if err != nil {
		m.logJobError(jobName, fmt.Errorf("failed to query due enrollments: %w", err))
		return
	}

	if len(due) == 0 {
		m.logJobComplete(jobName, "No certificates due")
		return
	}

	issued := 0
	failed := 0
	for i := range due {
		if err := m.certificates.IssueInternshipCertificate(ctx, &due[i]); err != nil {
			log.Printf("[CRON] Failed to issue certificate for enrollment %d: %v", due[i].ID, err)
			failed++
			continue
		}
		issued++
	}

	m.logJobComplete(jobName, fmt.Sprintf("Issued %d internship certificates, failed %d", issued, failed))
}

// CleanupOldData removes expired tokens and stale logs
func (m *CronManager) CleanupOldData() {
	jobName := "cleanup_old_data"

	totalCleaned := 0

	// 1. Expired JWT tokens in the blacklist
	result := m.db.Where("expires_at < ?", time.Now()).Delete(&model.JWTTokenBlacklist{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean token blacklist: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d expired tokens", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 2. Password reset tokens older than 7 days
	cutoffResets := time.Now().Add(-7 * 24 * time.Hour)
	result = m.db.Where("created_at < ?", cutoffResets).Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean password resets: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old password resets", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 3. Cron job logs older than 90 days
	cutoffLogs := time.Now().Add(-90 * 24 * time.Hour)
	result = m.db.Where("created_at < ?", cutoffLogs).Delete(&model.CronJobLog{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean cron logs: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old cron logs", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	// 4. Notifications read more than 180 days ago
	cutoffNotifications := time.Now().Add(-180 * 24 * time.Hour)
	result = m.db.Where("read = ? AND updated_at < ?", true, cutoffNotifications).Delete(&model.UserNotification{})
	if result.Error != nil {
		log.Printf("[CRON] Failed to clean notifications: %v", result.Error)
	} else {
		log.Printf("[CRON] Cleaned %d old notifications", result.RowsAffected)
		totalCleaned += int(result.RowsAffected)
	}

	m.logJobComplete(jobName, fmt.Sprintf("Cleaned up %d total records", totalCleaned))
}
