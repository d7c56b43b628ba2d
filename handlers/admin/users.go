package admin

import (
	"github.com/edusphere/internship-api/model"
	authutil "github.com/edusphere/internship-api/utils/auth"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UsersHandler manages user accounts (admin only)
type UsersHandler struct {
	db               *gorm.DB
	blacklistService *authutil.BlacklistService
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(db *gorm.DB) *UsersHandler {
	return &UsersHandler{
		db:               db,
		blacklistService: authutil.NewBlacklistService(db),
	}
}

// List returns users with optional role and college filters
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := h.db.Model(&model.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if collegeID := c.QueryInt("college_id"); collegeID > 0 {
		query = query.Where("college_id = ?", collegeID)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR name LIKE ? OR roll_number LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	var users []model.User
	err := query.Preload("College").Preload("Department").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load users")
	}

	return response.Paginated(c, users, response.CalculatePagination(page, limit, total))
}

// Get returns one user with enrollments
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	var user model.User
	err = h.db.Preload("College").Preload("Department").
		Preload("Enrollments").Preload("Enrollments.Course").
		First(&user, userID).Error
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, user)
}

// UpdateRoleRequest represents a role change request
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UpdateRole changes a user's role and invalidates their tokens
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Role != model.RoleStudent && req.Role != model.RoleHOD && req.Role != model.RoleAdmin {
		return response.BadRequest(c, "Role must be student, hod, or admin")
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if err := h.db.Model(&user).Update("role", req.Role).Error; err != nil {
		return response.InternalServerError(c, "Failed to update role")
	}

	// Old tokens carry the old role claim
	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Role updated, but failed to revoke tokens")
	}

	return response.Success(c, fiber.Map{
		"id":   user.ID,
		"role": req.Role,
	})
}

// RevokeTokens invalidates all of a user's issued tokens
func (h *UsersHandler) RevokeTokens(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if err := h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to revoke tokens")
	}

	return response.Success(c, fiber.Map{
		"message": "All tokens revoked",
	})
}
