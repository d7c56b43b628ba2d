package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services/repocheck"
	"github.com/edusphere/internship-api/services/storage"
	"github.com/edusphere/internship-api/utils/pdfvalidation"
	"github.com/edusphere/internship-api/utils/validation"
	"gorm.io/gorm"
)

// reportStore is the slice of the Spaces client the report upload needs
type reportStore interface {
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SubmissionService handles internship repository submission and report
// upload. Submission is one-shot: the repo URL is written by a conditional
// update that only succeeds while the stored URL is still empty, so a second
// submission always gets a conflict rather than overwriting the first.
type SubmissionService struct {
	db            *gorm.DB
	certificates  *CertificateService
	notifications *NotificationService
	reports       reportStore
	repoChecker   *repocheck.Checker
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(db *gorm.DB, certificates *CertificateService, notifications *NotificationService, spaces *storage.SpacesClient, repoChecker *repocheck.Checker) *SubmissionService {
	s := &SubmissionService{
		db:            db,
		certificates:  certificates,
		notifications: notifications,
		repoChecker:   repoChecker,
	}
	if spaces != nil {
		s.reports = spaces
	}
	return s
}

// SubmitResult is returned after a successful repository submission
type SubmitResult struct {
	RepoURL             string            `json:"repo_url"`
	SubmittedAt         time.Time         `json:"submitted_at"`
	InternshipCompleted bool              `json:"internship_completed"`
	CertificateIssued   bool              `json:"certificate_issued"`
	CertificateDueAt    *time.Time        `json:"certificate_due_at,omitempty"`
	RepoCheck           *repocheck.Result `json:"repo_check,omitempty"`
}

// SubmitRepo records the student's internship repository. The enrollment
// must be unlocked and must not have a submission yet. The internship
// certificate is issued immediately when the internship window has already
// elapsed; otherwise the hourly cron issues it once internship_ends_at
// passes.
func (s *SubmissionService) SubmitRepo(ctx context.Context, userID, courseID uint, repoURL string) (*SubmitResult, error) {
	if !validation.ValidateRepoURL(repoURL) {
		return nil, ErrInvalidRepoURL
	}

	db := s.db.WithContext(ctx)

	var enrollment model.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	if !enrollment.InternshipUnlocked {
		return nil, ErrInternshipLocked
	}
	if enrollment.InternshipGithubRepo != "" {
		return nil, ErrDuplicateSubmission
	}

	now := time.Now()

	// One-shot write: only succeeds while the stored URL is still empty
	res := db.Model(&model.Enrollment{}).
		Where("id = ? AND internship_unlocked = ? AND internship_github_repo = ?", enrollment.ID, true, "").
		Updates(map[string]interface{}{
			"internship_github_repo":  repoURL,
			"internship_submitted_at": now,
			"internship_completed":    true,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateSubmission
	}

	enrollment.InternshipGithubRepo = repoURL
	enrollment.InternshipSubmittedAt = &now
	enrollment.InternshipCompleted = true

	result := &SubmitResult{
		RepoURL:             repoURL,
		SubmittedAt:         now,
		InternshipCompleted: true,
	}

	if enrollment.InternshipEndsAt == nil || !enrollment.InternshipEndsAt.After(now) {
		if err := s.certificates.IssueInternshipCertificate(ctx, &enrollment); err != nil {
			log.Printf("Failed to issue internship certificate for enrollment %d: %v", enrollment.ID, err)
		} else {
			result.CertificateIssued = true
		}
	} else {
		result.CertificateDueAt = enrollment.InternshipEndsAt
	}

	if s.repoChecker != nil {
		check := s.repoChecker.Check(ctx, repoURL)
		if check.Checked {
			result.RepoCheck = &check
			log.Printf("Submission for enrollment %d: %s", enrollment.ID, check.String())
		}
	}

	if s.notifications != nil {
		message := "Your internship repository was submitted."
		if result.CertificateIssued {
			message += " Your internship certificate is ready."
		} else if result.CertificateDueAt != nil {
			message += fmt.Sprintf(" Your certificate will be issued after %s.",
				result.CertificateDueAt.Format("02 Jan 2006"))
		}
		s.notifications.Notify(ctx, userID, model.NotificationTypeSuccess, model.NotificationCategoryInternship,
			"Internship submitted", message, &courseID)
	}

	return result, nil
}

// AttachReport validates and stores the internship report PDF for an
// enrollment that already has a repository submission.
func (s *SubmissionService) AttachReport(ctx context.Context, userID, courseID uint, filename string, data []byte) (string, error) {
	db := s.db.WithContext(ctx)

	var enrollment model.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", ErrEnrollmentNotFound
		}
		return "", err
	}

	if !enrollment.InternshipUnlocked {
		return "", ErrInternshipLocked
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return "", fmt.Errorf("only PDF files are supported")
	}
	check, err := pdfvalidation.ValidatePDFBytes(data, pdfvalidation.ReportLimits)
	if err != nil {
		return "", fmt.Errorf("failed to validate report: %w", err)
	}
	if !check.Valid {
		return "", fmt.Errorf("invalid report: %s", check.Error)
	}

	if s.reports == nil {
		return "", ErrStorageNotConfigured
	}

	// The key is recorded only once the object actually exists
	key := fmt.Sprintf("reports/%d/%d/report.pdf", userID, enrollment.ID)
	if _, err := s.reports.UploadBytes(ctx, key, data, "application/pdf"); err != nil {
		return "", fmt.Errorf("failed to store report: %w", err)
	}

	if err := db.Model(&model.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Update("internship_report_key", key).Error; err != nil {
		return "", err
	}

	return key, nil
}
