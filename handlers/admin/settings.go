package admin

import (
	"strconv"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SettingsHandler manages application settings
type SettingsHandler struct {
	db       *gorm.DB
	settings *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{
		db:       db,
		settings: services.NewSettingsService(db),
	}
}

// List returns all settings
func (h *SettingsHandler) List(c *fiber.Ctx) error {
	var settings []model.AppSetting
	if err := h.db.Order("category ASC, key ASC").Find(&settings).Error; err != nil {
		return response.InternalServerError(c, "Failed to load settings")
	}

	return response.Success(c, settings)
}

// UpdateSettingRequest represents a setting update
type UpdateSettingRequest struct {
	Value string `json:"value" validate:"required"`
}

// Update sets one setting by key. Integer-typed keys are validated before
// writing so a bad value cannot break the progress engine's thresholds.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return response.BadRequest(c, "Setting key is required")
	}

	var req UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Value == "" {
		return response.BadRequest(c, "Value is required")
	}

	valueType := "string"
	category := "general"
	switch key {
	case model.SettingInternshipDurationDays:
		valueType = "int"
		category = "internship"
		days, err := strconv.Atoi(req.Value)
		if err != nil || days < 1 || days > 365 {
			return response.BadRequest(c, "Internship duration must be between 1 and 365 days")
		}
	case model.SettingQuizPassPercent:
		valueType = "int"
		category = "course"
		percent, err := strconv.Atoi(req.Value)
		if err != nil || percent < 0 || percent > 100 {
			return response.BadRequest(c, "Quiz pass percent must be between 0 and 100")
		}
	}

	if err := h.settings.Set(c.Context(), key, req.Value, valueType, category); err != nil {
		return response.InternalServerError(c, "Failed to update setting")
	}

	return response.Success(c, fiber.Map{
		"key":   key,
		"value": req.Value,
	})
}
