package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/edusphere/internship-api/database"
	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services/storage"
	"github.com/edusphere/internship-api/utils/cache"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// verifyCacheTTL bounds how long a public verification result is served from
// Redis before hitting the database again
const verifyCacheTTL = 15 * time.Minute

// CertificateService issues certificate rows and renders them as PDFs.
// Issuance is idempotent: the (enrollment, type) unique index plus an
// insert-or-ignore means retries and concurrent issuers converge on one row.
type CertificateService struct {
	db            *gorm.DB
	rawStore      *database.PostgreSQLStore
	redisCache    *cache.RedisCache
	spaces        *storage.SpacesClient
	notifications *NotificationService
}

// NewCertificateService creates a new certificate service. rawStore,
// redisCache and spaces are optional; nil disables the raw lookup path,
// verification caching and object-storage upload respectively.
func NewCertificateService(db *gorm.DB, rawStore *database.PostgreSQLStore, redisCache *cache.RedisCache, spaces *storage.SpacesClient, notifications *NotificationService) *CertificateService {
	return &CertificateService{
		db:            db,
		rawStore:      rawStore,
		redisCache:    redisCache,
		spaces:        spaces,
		notifications: notifications,
	}
}

// EnsureIssued creates the certificate row for (enrollment, type) if it does
// not exist yet and returns the stored row either way.
func (s *CertificateService) EnsureIssued(ctx context.Context, enrollment *model.Enrollment, certType string) (*model.Certificate, error) {
	if !model.ValidCertificateType(certType) {
		return nil, fmt.Errorf("unknown certificate type %q", certType)
	}

	db := s.db.WithContext(ctx)

	cert := model.Certificate{
		ID:           uuid.New().String(),
		EnrollmentID: enrollment.ID,
		UserID:       enrollment.UserID,
		CourseID:     enrollment.CourseID,
		Type:         certType,
		IssuedAt:     time.Now(),
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cert).Error; err != nil {
		return nil, err
	}

	// Re-read so a lost race still returns the winning row
	var stored model.Certificate
	if err := db.Where("enrollment_id = ? AND type = ?", enrollment.ID, certType).First(&stored).Error; err != nil {
		return nil, err
	}

	return &stored, nil
}

// IssueInternshipCertificate flips internship_certificate_issued exactly once
// and creates the certificate row. Safe to call repeatedly; the cron and the
// submission path both use it.
func (s *CertificateService) IssueInternshipCertificate(ctx context.Context, enrollment *model.Enrollment) error {
	db := s.db.WithContext(ctx)

	res := db.Model(&model.Enrollment{}).
		Where("id = ? AND internship_completed = ? AND internship_certificate_issued = ?", enrollment.ID, true, false).
		Update("internship_certificate_issued", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Already issued, or the internship was never completed
		return nil
	}

	enrollment.InternshipCertificateIssued = true

	if _, err := s.EnsureIssued(ctx, enrollment, model.CertificateTypeInternship); err != nil {
		return err
	}

	if s.notifications != nil {
		s.notifications.Notify(ctx, enrollment.UserID, model.NotificationTypeSuccess, model.NotificationCategoryCertificate,
			"Internship certificate issued",
			"Your internship certificate is ready to download.",
			&enrollment.CourseID)
	}

	return nil
}

// GetForEnrollment returns the issued certificate of the given type, or
// ErrNotIssued when the corresponding enrollment flag is not set yet.
func (s *CertificateService) GetForEnrollment(ctx context.Context, userID, courseID uint, certType string) (*model.Certificate, error) {
	if !model.ValidCertificateType(certType) {
		return nil, ErrCertificateUnknown
	}

	db := s.db.WithContext(ctx)

	var enrollment model.Enrollment
	if err := db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}

	issued := false
	switch certType {
	case model.CertificateTypeCourse:
		issued = enrollment.CourseCertificateIssued
	case model.CertificateTypeOfferLetter:
		issued = enrollment.OfferLetterIssued
	case model.CertificateTypeInternship:
		issued = enrollment.InternshipCertificateIssued
	}
	if !issued {
		return nil, ErrNotIssued
	}

	// Self-heal: the flag is authoritative, the row follows it
	return s.EnsureIssued(ctx, &enrollment, certType)
}

// Render produces the PDF for an issued certificate, uploading a copy to
// object storage on first render.
func (s *CertificateService) Render(ctx context.Context, userID, courseID uint, certType string) ([]byte, *model.Certificate, error) {
	cert, err := s.GetForEnrollment(ctx, userID, courseID, certType)
	if err != nil {
		return nil, nil, err
	}

	db := s.db.WithContext(ctx)

	var user model.User
	if err := db.Preload("College").First(&user, cert.UserID).Error; err != nil {
		return nil, nil, err
	}
	var course model.Course
	if err := db.First(&course, cert.CourseID).Error; err != nil {
		return nil, nil, err
	}

	pdfBytes, err := renderCertificatePDF(cert, &user, &course)
	if err != nil {
		return nil, nil, err
	}

	if s.spaces != nil && cert.StorageKey == "" {
		key := fmt.Sprintf("certificates/%d/%s.pdf", cert.UserID, cert.ID)
		if _, err := s.spaces.UploadBytes(ctx, key, pdfBytes, "application/pdf"); err != nil {
			log.Printf("Failed to upload certificate %s: %v", cert.ID, err)
		} else if err := db.Model(cert).Update("storage_key", key).Error; err != nil {
			log.Printf("Failed to record storage key for certificate %s: %v", cert.ID, err)
		}
	}

	return pdfBytes, cert, nil
}

// certificateTitles maps certificate types to their document headings
var certificateTitles = map[string]string{
	model.CertificateTypeCourse:      "Certificate of Completion",
	model.CertificateTypeOfferLetter: "Internship Offer Letter",
	model.CertificateTypeInternship:  "Internship Completion Certificate",
}

// renderCertificatePDF draws one landscape A4 page for the certificate
func renderCertificatePDF(cert *model.Certificate, user *model.User, course *model.Course) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(certificateTitles[cert.Type], false)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	// Border
	pdf.SetLineWidth(1.2)
	pdf.SetDrawColor(30, 64, 124)
	pdf.Rect(8, 8, pageWidth-16, pageHeight-16, "D")
	pdf.SetLineWidth(0.3)
	pdf.Rect(11, 11, pageWidth-22, pageHeight-22, "D")

	pdf.SetY(30)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(30, 64, 124)
	pdf.CellFormat(0, 10, "EduSphere Internship Program", "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Times", "B", 30)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 14, certificateTitles[cert.Type], "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(60, 60, 60)
	switch cert.Type {
	case model.CertificateTypeOfferLetter:
		pdf.CellFormat(0, 8, "This letter confirms that", "", 1, "C", false, 0, "")
	default:
		pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Times", "B", 24)
	pdf.SetTextColor(20, 20, 20)
	pdf.CellFormat(0, 12, user.Name, "", 1, "C", false, 0, "")

	if user.RollNumber != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(90, 90, 90)
		line := "Roll Number: " + user.RollNumber
		if user.College != nil {
			line += "  |  " + user.College.Name
		}
		pdf.CellFormat(0, 7, line, "", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(60, 60, 60)
	var body string
	switch cert.Type {
	case model.CertificateTypeCourse:
		body = fmt.Sprintf("has successfully completed all course modules of \"%s\".", course.Title)
	case model.CertificateTypeOfferLetter:
		body = fmt.Sprintf("is offered an internship position under the \"%s\" program.", course.Title)
	case model.CertificateTypeInternship:
		body = fmt.Sprintf("has successfully completed the internship phase of \"%s\".", course.Title)
	}
	pdf.CellFormat(0, 8, body, "", 1, "C", false, 0, "")

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 7, "Issued on "+cert.IssuedAt.Format("02 January 2006"), "", 1, "C", false, 0, "")

	pdf.SetY(pageHeight - 30)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 5, "Certificate ID: "+cert.ID, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Verify at /api/v1/certificates/verify/"+cert.ID, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify resolves a certificate id to its public record. Results are cached
// in Redis; the lookup prefers the raw SQL store and falls back to GORM.
func (s *CertificateService) Verify(ctx context.Context, certificateID string) (*database.CertificateVerification, error) {
	cacheKey := "cert:verify:" + certificateID

	if s.redisCache != nil {
		var cached database.CertificateVerification
		if err := s.redisCache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	verification, err := s.lookupCertificate(ctx, certificateID)
	if err != nil {
		return nil, err
	}

	if s.redisCache != nil {
		if err := s.redisCache.SetJSON(ctx, cacheKey, verification, verifyCacheTTL); err != nil {
			log.Printf("Failed to cache verification for %s: %v", certificateID, err)
		}
	}

	return verification, nil
}

func (s *CertificateService) lookupCertificate(ctx context.Context, certificateID string) (*database.CertificateVerification, error) {
	if s.rawStore != nil {
		verification, err := s.rawStore.LookupCertificate(certificateID)
		if err == nil {
			return verification, nil
		}
		if err == sql.ErrNoRows {
			return nil, ErrCertificateUnknown
		}
		log.Printf("Raw certificate lookup failed, falling back to ORM: %v", err)
	}

	db := s.db.WithContext(ctx)

	var cert model.Certificate
	if err := db.Preload("User.College").Preload("Course").Where("id = ?", certificateID).First(&cert).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCertificateUnknown
		}
		return nil, err
	}

	college := ""
	if cert.User.College != nil {
		college = cert.User.College.Name
	}

	return &database.CertificateVerification{
		CertificateID: cert.ID,
		Type:          cert.Type,
		StudentName:   cert.User.Name,
		Email:         cert.User.Email,
		College:       college,
		Course:        cert.Course.Title,
	}, nil
}
