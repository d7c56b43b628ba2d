package auth

import (
	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/utils/middleware"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/edusphere/internship-api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// GetProfile returns the authenticated user with college and department
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var user model.User
	if err := h.db.Preload("College").Preload("Department").First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, user)
}

// UpdateProfile updates the mutable profile fields. Email, roll number and
// college binding are fixed at registration.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if name := validation.SanitizeString(req.Name); name != "" {
		if len(name) < 2 {
			return response.BadRequest(c, "Name must be at least 2 characters")
		}
		updates["name"] = name
	}
	if phone := validation.SanitizeString(req.Phone); phone != "" {
		updates["phone"] = phone
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "Nothing to update")
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if err := h.db.Model(&user).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toUserResponse(&user))
}
