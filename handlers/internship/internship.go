package internship

import (
	"errors"
	"io"

	"github.com/edusphere/internship-api/services"
	"github.com/edusphere/internship-api/utils/middleware"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/edusphere/internship-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// InternshipHandler handles AICTE verification, repository submission and
// report upload
type InternshipHandler struct {
	verification *services.VerificationService
	submission   *services.SubmissionService
}

// NewInternshipHandler creates a new internship handler
func NewInternshipHandler(verification *services.VerificationService, submission *services.SubmissionService) *InternshipHandler {
	return &InternshipHandler{
		verification: verification,
		submission:   submission,
	}
}

// SubmitAicteIDRequest represents an AICTE ID verification request
type SubmitAicteIDRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	AicteID  string `json:"aicte_id" validate:"required"`
}

// SubmitAicteID verifies the submitted AICTE internship ID against the
// allowlist and unlocks the internship phase
func (h *InternshipHandler) SubmitAicteID(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SubmitAicteIDRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.AicteID = validation.SanitizeString(req.AicteID)
	if req.CourseID == 0 || req.AicteID == "" {
		return response.BadRequest(c, "course_id and aicte_id are required")
	}
	if !validation.ValidateAicteID(req.AicteID) {
		return response.BadRequest(c, "Invalid AICTE internship ID format")
	}

	result, err := h.verification.VerifyAndUnlock(c.Context(), userID, req.CourseID, req.AicteID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "You are not enrolled in this course")
		case errors.Is(err, services.ErrAlreadyUnlocked):
			return response.Conflict(c, "Internship is already unlocked for this course")
		case errors.Is(err, services.ErrAicteNotFound):
			return response.BadRequest(c, "AICTE internship ID not found")
		case errors.Is(err, services.ErrAicteEmailMismatch):
			return response.BadRequest(c, "This AICTE internship ID is registered to a different email")
		case errors.Is(err, services.ErrAicteCourseMismatch):
			return response.BadRequest(c, "This AICTE internship ID belongs to a different course")
		case errors.Is(err, services.ErrAicteAlreadyUsed):
			return response.BadRequest(c, "This AICTE internship ID has already been used")
		}
		return response.InternalServerError(c, "Failed to verify AICTE ID")
	}

	return response.SuccessWithMessage(c, "Internship unlocked", result)
}

// SubmitRepoRequest represents an internship repository submission
type SubmitRepoRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	RepoURL  string `json:"repo_url" validate:"required,url"`
}

// SubmitRepo records the internship repository submission, once
func (h *InternshipHandler) SubmitRepo(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SubmitRepoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.RepoURL = validation.SanitizeString(req.RepoURL)
	if req.CourseID == 0 || req.RepoURL == "" {
		return response.BadRequest(c, "course_id and repo_url are required")
	}

	result, err := h.submission.SubmitRepo(c.Context(), userID, req.CourseID, req.RepoURL)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "You are not enrolled in this course")
		case errors.Is(err, services.ErrInvalidRepoURL):
			return response.BadRequest(c, "Repository URL must be an https github.com or gitlab.com link")
		case errors.Is(err, services.ErrInternshipLocked):
			return response.Forbidden(c, "Internship is not unlocked for this course")
		case errors.Is(err, services.ErrDuplicateSubmission):
			return response.Conflict(c, "Internship repository already submitted")
		}
		return response.InternalServerError(c, "Failed to submit repository")
	}

	return response.SuccessWithMessage(c, "Internship submitted", result)
}

// UploadReport attaches the internship report PDF to the enrollment
func (h *InternshipHandler) UploadReport(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID := c.QueryInt("course_id")
	if courseID < 1 {
		return response.BadRequest(c, "course_id query parameter is required")
	}

	fileHeader, err := c.FormFile("report")
	if err != nil {
		return response.BadRequest(c, "A 'report' PDF file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	key, err := h.submission.AttachReport(c.Context(), userID, uint(courseID), fileHeader.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "You are not enrolled in this course")
		case errors.Is(err, services.ErrInternshipLocked):
			return response.Forbidden(c, "Internship is not unlocked for this course")
		case errors.Is(err, services.ErrStorageNotConfigured):
			return response.InternalServerError(c, "Report storage is not configured")
		}
		return response.BadRequest(c, err.Error())
	}

	return response.SuccessWithMessage(c, "Report uploaded", fiber.Map{
		"report_key": key,
	})
}
