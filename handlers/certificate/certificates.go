package certificate

import (
	"errors"
	"fmt"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services"
	"github.com/edusphere/internship-api/utils/middleware"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CertificateHandler handles certificate download and public verification
type CertificateHandler struct {
	db           *gorm.DB
	certificates *services.CertificateService
}

// NewCertificateHandler creates a new certificate handler
func NewCertificateHandler(db *gorm.DB, certificates *services.CertificateService) *CertificateHandler {
	return &CertificateHandler{
		db:           db,
		certificates: certificates,
	}
}

// ListMyCertificates returns the caller's issued certificates
func (h *CertificateHandler) ListMyCertificates(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var certificates []model.Certificate
	err := h.db.Preload("Course").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&certificates).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load certificates")
	}

	return response.Success(c, certificates)
}

// Download renders the certificate PDF for the caller's enrollment
func (h *CertificateHandler) Download(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("courseID")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}
	certType := c.Params("type")
	if !model.ValidCertificateType(certType) {
		return response.BadRequest(c, "Certificate type must be course, offer_letter, or internship")
	}

	pdfBytes, cert, err := h.certificates.Render(c.Context(), userID, uint(courseID), certType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "You are not enrolled in this course")
		case errors.Is(err, services.ErrNotIssued):
			return response.Forbidden(c, "This certificate has not been issued yet")
		case errors.Is(err, services.ErrCertificateUnknown):
			return response.NotFound(c, "Certificate not found")
		}
		return response.InternalServerError(c, "Failed to render certificate")
	}

	// Inline by default so browsers preview the PDF; ?download=true forces
	// a file download
	disposition := "inline"
	if c.QueryBool("download") {
		disposition = "attachment"
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`%s; filename="%s-%s.pdf"`, disposition, certType, cert.ID))
	return c.Send(pdfBytes)
}

// Verify resolves a certificate id to its public record. No authentication:
// employers and institutions use this from the id printed on the document.
func (h *CertificateHandler) Verify(c *fiber.Ctx) error {
	certificateID := c.Params("certificateID")
	if certificateID == "" {
		return response.BadRequest(c, "Certificate id is required")
	}

	verification, err := h.certificates.Verify(c.Context(), certificateID)
	if err != nil {
		if errors.Is(err, services.ErrCertificateUnknown) {
			return response.Success(c, fiber.Map{"valid": false})
		}
		return response.InternalServerError(c, "Failed to verify certificate")
	}

	return response.Success(c, fiber.Map{
		"valid":       true,
		"certificate": verification,
	})
}
