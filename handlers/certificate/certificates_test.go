package certificate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edusphere/internship-api/database"
	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *model.User) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrateAll(db); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	user := model.User{Name: "Asha Verma", Email: "asha.verma@example.com", PasswordHash: "x", RollNumber: "GECB-CSE-001"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	handler := NewCertificateHandler(db, services.NewCertificateService(db, nil, nil, nil, nil))

	app := fiber.New()
	app.Get("/api/v1/certificates/verify/:certificateID", handler.Verify)
	// Stand-in for the auth middleware: stamp the fixture user into locals
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", user.ID)
		return c.Next()
	})
	app.Get("/api/v1/certificates/:courseID/:type", handler.Download)

	return app, db, &user
}

func seedIssuedEnrollment(t *testing.T, db *gorm.DB, userID uint) *model.Enrollment {
	t.Helper()

	course := model.Course{Title: "Full-Stack Development", Slug: "full-stack-development", Price: 499900, Published: true}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	enrollment := model.Enrollment{
		UserID:                  userID,
		CourseID:                course.ID,
		IsPaid:                  true,
		CourseCompleted:         true,
		CourseCertificateIssued: true,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}
	return &enrollment
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestDownloadDispositions(t *testing.T) {
	app, db, user := newTestApp(t)
	enrollment := seedIssuedEnrollment(t, db, user.ID)

	// Inline preview is the default
	resp := get(t, app, fmt.Sprintf("/api/v1/certificates/%d/course", enrollment.CourseID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); ct != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", ct)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); !strings.HasPrefix(cd, "inline;") {
		t.Errorf("content disposition = %q, want inline", cd)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("%PDF")) {
		t.Error("response body is not a PDF")
	}

	// download=true switches to an attachment
	resp = get(t, app, fmt.Sprintf("/api/v1/certificates/%d/course?download=true", enrollment.CourseID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if cd := resp.Header.Get(fiber.HeaderContentDisposition); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("content disposition = %q, want attachment", cd)
	}
}

func TestDownloadGatesOnIssuedFlag(t *testing.T) {
	app, db, user := newTestApp(t)
	enrollment := seedIssuedEnrollment(t, db, user.ID)

	// The internship flag is still down for this enrollment
	resp := get(t, app, fmt.Sprintf("/api/v1/certificates/%d/internship", enrollment.CourseID))
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status for unissued type = %d, want 403", resp.StatusCode)
	}

	resp = get(t, app, fmt.Sprintf("/api/v1/certificates/%d/diploma", enrollment.CourseID))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status for unknown type = %d, want 400", resp.StatusCode)
	}
}

func TestVerifyEndpoint(t *testing.T) {
	app, db, user := newTestApp(t)
	enrollment := seedIssuedEnrollment(t, db, user.ID)

	// Render once so the certificate row exists
	resp := get(t, app, fmt.Sprintf("/api/v1/certificates/%d/course", enrollment.CourseID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("render status = %d, want 200", resp.StatusCode)
	}

	var cert model.Certificate
	if err := db.Where("enrollment_id = ?", enrollment.ID).First(&cert).Error; err != nil {
		t.Fatalf("failed to load certificate: %v", err)
	}

	resp = get(t, app, "/api/v1/certificates/verify/"+cert.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d, want 200", resp.StatusCode)
	}
	var found struct {
		Data struct {
			Valid       bool `json:"valid"`
			Certificate struct {
				StudentName string `json:"student_name"`
			} `json:"certificate"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&found); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !found.Data.Valid || found.Data.Certificate.StudentName != user.Name {
		t.Errorf("verification = %+v", found.Data)
	}

	// Unknown ids are a negative verification, not an error
	resp = get(t, app, "/api/v1/certificates/verify/00000000-0000-0000-0000-000000000000")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unknown id status = %d, want 200", resp.StatusCode)
	}
	var missing struct {
		Data struct {
			Valid bool `json:"valid"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&missing); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if missing.Data.Valid {
		t.Error("unknown certificate id reported valid")
	}
}
