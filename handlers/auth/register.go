package auth

import (
	"errors"
	"time"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services"
	authutil "github.com/edusphere/internship-api/utils/auth"
	"github.com/edusphere/internship-api/utils/middleware"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/edusphere/internship-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errSeatClaimed aborts the registration transaction when the seat claim
// loses a race
var errSeatClaimed = errors.New("seat already claimed")

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	emailService         *services.EmailService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
	}
}

// RegisterRequest represents a student registration request. The roll number
// must match a pre-generated unclaimed seat of the chosen college and
// department.
type RegisterRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Name         string `json:"name" validate:"required,min=2"`
	Phone        string `json:"phone,omitempty"`
	CollegeID    uint   `json:"college_id" validate:"required"`
	DepartmentID uint   `json:"department_id" validate:"required"`
	RollNumber   string `json:"roll_number" validate:"required"`
}

// RegisterResponse represents a successful registration response
type RegisterResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	RollNumber   string    `json:"roll_number,omitempty"`
	CollegeID    *uint     `json:"college_id,omitempty"`
	DepartmentID *uint     `json:"department_id,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		RollNumber:   user.RollNumber,
		CollegeID:    user.CollegeID,
		DepartmentID: user.DepartmentID,
		Phone:        user.Phone,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// Register handles student registration with an atomic seat claim. The seat
// update is conditional on claimed = false inside the same transaction as the
// user insert, so two registrations racing on one roll number can never both
// succeed.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = validation.SanitizeString(req.Email)
	req.Name = validation.SanitizeString(req.Name)
	req.RollNumber = validation.SanitizeString(req.RollNumber)

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return response.BadRequest(c, "Email, password, and name are required")
	}
	if !validation.ValidateEmail(req.Email) {
		return response.BadRequest(c, "Invalid email format")
	}
	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}
	if !validation.ValidateRollNumber(req.RollNumber) {
		return response.BadRequest(c, "Invalid roll number format")
	}

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "User with this email already exists")
	}

	// The seat must exist for this college/department before we try to claim
	var seat model.RollNumberSeat
	err := h.db.Where("college_id = ? AND department_id = ? AND roll_number = ?",
		req.CollegeID, req.DepartmentID, req.RollNumber).First(&seat).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Roll number not found for this college and department")
		}
		return response.InternalServerError(c, "Failed to look up roll number")
	}
	if seat.Claimed {
		return response.Conflict(c, "Roll number has already been claimed")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Role:         model.RoleStudent,
		RollNumber:   req.RollNumber,
		CollegeID:    &req.CollegeID,
		DepartmentID: &req.DepartmentID,
		Phone:        validation.SanitizeString(req.Phone),
		TokenVersion: 0,
	}

	claimErr := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&model.RollNumberSeat{}).
			Where("id = ? AND claimed = ?", seat.ID, false).
			Updates(map[string]interface{}{
				"claimed":            true,
				"claimed_by_user_id": user.ID,
				"claimed_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errSeatClaimed
		}

		return nil
	})
	if claimErr == errSeatClaimed {
		return response.Conflict(c, "Roll number has already been claimed")
	}
	if claimErr != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := RegisterResponse{
		User:         toUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60, // 24 hours in seconds
	}

	return response.Created(c, res)
}
