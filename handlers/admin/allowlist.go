package admin

import (
	"strings"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/edusphere/internship-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllowlistHandler manages the AICTE internship ID allowlist
type AllowlistHandler struct {
	db *gorm.DB
}

// NewAllowlistHandler creates a new allowlist handler
func NewAllowlistHandler(db *gorm.DB) *AllowlistHandler {
	return &AllowlistHandler{db: db}
}

// CreateAicteIDRequest represents an allowlist entry creation request
type CreateAicteIDRequest struct {
	AicteID  string `json:"aicte_id" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	CourseID uint   `json:"course_id" validate:"required"`
}

// Create adds one AICTE ID to the allowlist, bound to a student email and a
// course
func (h *AllowlistHandler) Create(c *fiber.Ctx) error {
	var req CreateAicteIDRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.AicteID = strings.ToUpper(validation.SanitizeString(req.AicteID))
	req.Email = strings.ToLower(validation.SanitizeString(req.Email))

	if req.AicteID == "" || req.Email == "" || req.CourseID == 0 {
		return response.BadRequest(c, "aicte_id, email, and course_id are required")
	}
	if !validation.ValidateAicteID(req.AicteID) {
		return response.BadRequest(c, "Invalid AICTE internship ID format")
	}
	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}

	var course model.Course
	if err := h.db.First(&course, req.CourseID).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	var existing model.AicteInternship
	if err := h.db.Where("aicte_id = ?", req.AicteID).First(&existing).Error; err == nil {
		return response.Conflict(c, "This AICTE ID is already on the allowlist")
	}

	record := model.AicteInternship{
		AicteID:  req.AicteID,
		Email:    req.Email,
		CourseID: req.CourseID,
	}
	if err := h.db.Create(&record).Error; err != nil {
		return response.InternalServerError(c, "Failed to create allowlist entry")
	}

	return response.Created(c, record)
}

// BulkCreateRequest represents a bulk allowlist import
type BulkCreateRequest struct {
	Entries []CreateAicteIDRequest `json:"entries" validate:"required,min=1"`
}

// BulkCreate imports many allowlist entries; duplicates are skipped rather
// than failing the batch
func (h *AllowlistHandler) BulkCreate(c *fiber.Ctx) error {
	var req BulkCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.Entries) == 0 {
		return response.BadRequest(c, "At least one entry is required")
	}
	if len(req.Entries) > 1000 {
		return response.BadRequest(c, "At most 1000 entries per batch")
	}

	records := make([]model.AicteInternship, 0, len(req.Entries))
	skipped := 0
	for _, entry := range req.Entries {
		aicteID := strings.ToUpper(validation.SanitizeString(entry.AicteID))
		email := strings.ToLower(validation.SanitizeString(entry.Email))
		if !validation.ValidateAicteID(aicteID) || !validation.ValidateEmail(email) || entry.CourseID == 0 {
			skipped++
			continue
		}
		records = append(records, model.AicteInternship{
			AicteID:  aicteID,
			Email:    email,
			CourseID: entry.CourseID,
		})
	}

	if len(records) > 0 {
		if err := h.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error; err != nil {
			return response.InternalServerError(c, "Failed to import allowlist entries")
		}
	}

	return response.Created(c, fiber.Map{
		"imported": len(records),
		"skipped":  skipped,
	})
}

// List returns allowlist entries with usage state
func (h *AllowlistHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := h.db.Model(&model.AicteInternship{})
	if courseID := c.QueryInt("course_id"); courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}
	if used := c.Query("used"); used == "true" {
		query = query.Where("is_used = ?", true)
	} else if used == "false" {
		query = query.Where("is_used = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count entries")
	}

	var records []model.AicteInternship
	err := query.Preload("UsedBy").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load entries")
	}

	return response.Paginated(c, records, response.CalculatePagination(page, limit, total))
}

// Delete removes an unused allowlist entry. Used entries are immutable: they
// document which enrollment consumed the ID.
func (h *AllowlistHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid entry id")
	}

	var record model.AicteInternship
	if err := h.db.First(&record, id).Error; err != nil {
		return response.NotFound(c, "Allowlist entry not found")
	}
	if record.IsUsed {
		return response.Conflict(c, "Cannot delete an entry that has been used")
	}

	if err := h.db.Delete(&record).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete entry")
	}

	return response.NoContent(c)
}
