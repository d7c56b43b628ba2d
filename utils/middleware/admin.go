package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/edusphere/internship-api/model"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuditAction records an admin audit log entry after the wrapped handler
// succeeds. Resource id is taken from the :id route param when present.
func AuditAction(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			return err
		}

		// Only log mutations that succeeded
		if c.Response().StatusCode() >= 400 {
			return nil
		}

		user, ok := GetUser(c)
		if !ok || user == nil {
			return nil
		}

		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsedID, parseErr := strconv.ParseUint(id, 10, 32); parseErr == nil {
				resourceID = uint(parsedID)
			}
		}

		var newValue string
		if body := c.Body(); len(body) > 0 && json.Valid(body) {
			newValue = string(body)
		}

		entry := model.AdminAuditLog{
			AdminID:    user.ID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			NewValue:   newValue,
			IPAddress:  c.IP(),
			UserAgent:  c.Get("User-Agent"),
		}

		// Audit failure must not fail the request
		db.Create(&entry)
		return nil
	}
}
