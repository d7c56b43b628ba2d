package services

import "errors"

// Sentinel errors returned by the services layer. Handlers translate these
// into HTTP statuses at the boundary.
var (
	// Not found (404)
	ErrUserNotFound       = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrTopicNotFound      = errors.New("topic not found in this course")
	ErrCertificateUnknown = errors.New("certificate not found")
	ErrPaymentNotFound    = errors.New("payment record not found")

	// Validation (400)
	ErrInvalidRepoURL   = errors.New("repository URL must be an https github.com or gitlab.com link")
	ErrAnswerCount      = errors.New("answer count does not match question count")
	ErrInvalidSignature = errors.New("payment signature verification failed")

	// External-id verification failures (400)
	ErrAicteNotFound       = errors.New("AICTE internship ID not found")
	ErrAicteEmailMismatch  = errors.New("AICTE internship ID is registered to a different email")
	ErrAicteCourseMismatch = errors.New("AICTE internship ID belongs to a different course")
	ErrAicteAlreadyUsed    = errors.New("AICTE internship ID has already been used")
	ErrAlreadyUnlocked     = errors.New("internship is already unlocked for this enrollment")

	// State / authorization (403)
	ErrInternshipLocked = errors.New("internship is not unlocked for this enrollment")
	ErrNotIssued        = errors.New("certificate has not been issued for this enrollment")

	// Conflict (409)
	ErrDuplicateSubmission = errors.New("internship repository already submitted")
	ErrDuplicateEnrollment = errors.New("already enrolled in this course")

	// Configuration
	ErrPaymentsNotConfigured = errors.New("payment gateway is not configured")
	ErrStorageNotConfigured  = errors.New("object storage is not configured")
)
