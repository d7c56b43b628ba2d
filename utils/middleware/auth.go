package middleware

import (
	"errors"
	"strings"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/utils/auth"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Authentication failure reasons. authenticate returns these and reject
// translates them into HTTP responses, so a failed check can never fall
// through to the handler chain.
var (
	errMissingToken  = errors.New("missing authorization token")
	errBadAuthFormat = errors.New("invalid authorization format")
	errWrongType     = errors.New("invalid token type")
	errTokenRevoked  = errors.New("token has been revoked")
	errStaleToken    = errors.New("token has been invalidated")
	errUnknownUser   = errors.New("user not found")
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// authenticate resolves the Authorization header to a user, enforcing
// blacklist and token-version checks. It never writes to the response
// itself; failures come back as errors for reject to translate.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*model.User, *auth.Claims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, errMissingToken
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, errBadAuthFormat
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		return nil, nil, err
	}

	if claims.TokenType != "access" {
		return nil, nil, errWrongType
	}

	// Check if token is revoked (blacklisted)
	isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if isRevoked {
		return nil, nil, errTokenRevoked
	}

	// Load user from database and verify token version
	var user model.User
	if err := m.db.First(&user, claims.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errUnknownUser
		}
		return nil, nil, err
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, errStaleToken
	}

	return &user, claims, nil
}

// reject maps an authenticate failure to its HTTP response
func (m *AuthMiddleware) reject(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errMissingToken):
		return response.Unauthorized(c, "Missing authorization token")
	case errors.Is(err, errBadAuthFormat):
		return response.Unauthorized(c, "Invalid authorization format")
	case errors.Is(err, auth.ErrExpiredToken):
		return response.Unauthorized(c, "Token has expired")
	case errors.Is(err, errWrongType):
		return response.Unauthorized(c, "Invalid token type")
	case errors.Is(err, errTokenRevoked):
		return response.Unauthorized(c, "Token has been revoked")
	case errors.Is(err, errStaleToken):
		return response.Unauthorized(c, "Token has been invalidated")
	case errors.Is(err, errUnknownUser):
		return response.Unauthorized(c, "User not found")
	case errors.Is(err, auth.ErrInvalidToken):
		return response.Unauthorized(c, "Invalid token")
	}
	return response.InternalServerError(c, "Authentication failed")
}

func storeUser(c *fiber.Ctx, user *model.User, claims *auth.Claims) {
	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_role", claims.Role)
	c.Locals("claims", claims)
	c.Locals("user", user)
	c.Locals("token_jti", claims.ID)
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, err := m.authenticate(c)
		if err != nil {
			return m.reject(c, err)
		}

		storeUser(c, user, claims)
		return c.Next()
	}
}

// RequireRole is middleware that requires specific user role
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userRole := c.Locals("user_role")
		if userRole == nil {
			return response.Forbidden(c, "Access denied")
		}

		role := userRole.(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireAdmin is middleware that validates the token inline and checks for
// admin role
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, claims, err := m.authenticate(c)
		if err != nil {
			return m.reject(c, err)
		}

		if user.Role != model.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}

		storeUser(c, user, claims)
		return c.Next()
	}
}

// GetUser returns the authenticated user stored by the auth middleware
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user, ok := c.Locals("user").(*model.User)
	return user, ok
}

// GetUserID returns the authenticated user id stored by the auth middleware
func GetUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok
}

// GetTokenJTI returns the JWT id of the presented access token
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti, ok := c.Locals("token_jti").(string)
	return jti, ok
}
