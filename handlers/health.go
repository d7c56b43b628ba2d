package handlers

import (
	"github.com/edusphere/internship-api/database"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports liveness plus the state of the backing stores
func HandleCheckHealth(c *fiber.Ctx, stores ...database.Storage) error {
	status := "ok"
	checks := fiber.Map{}

	for _, store := range stores {
		name := "postgres"
		if _, isRaw := store.(*database.PostgreSQLStore); isRaw {
			name = "postgres_raw"
		}
		if err := store.HealthCheck(); err != nil {
			status = "degraded"
			checks[name] = err.Error()
		} else {
			checks[name] = "ok"
		}
	}

	return c.JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}
