package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edusphere/internship-api/database"
	"github.com/edusphere/internship-api/model"
	authutil "github.com/edusphere/internship-api/utils/auth"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
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

	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret:        "test-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "test",
	})
	handler := NewAuthHandler(db, jwtManager, nil)

	app := fiber.New()
	app.Post("/api/v1/auth/register", handler.Register)
	app.Post("/api/v1/auth/login", handler.Login)

	return app, db
}

func seedSeat(t *testing.T, db *gorm.DB) (model.College, model.Department, model.RollNumberSeat) {
	t.Helper()

	college := model.College{Name: "Gov. Engineering College Bhopal", Code: "GECB"}
	if err := db.Create(&college).Error; err != nil {
		t.Fatalf("failed to create college: %v", err)
	}
	department := model.Department{CollegeID: college.ID, Name: "Computer Science", Code: "CSE"}
	if err := db.Create(&department).Error; err != nil {
		t.Fatalf("failed to create department: %v", err)
	}
	seat := model.RollNumberSeat{CollegeID: college.ID, DepartmentID: department.ID, RollNumber: "GECB-CSE-001"}
	if err := db.Create(&seat).Error; err != nil {
		t.Fatalf("failed to create seat: %v", err)
	}
	return college, department, seat
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func registerPayload(college model.College, department model.Department, email, roll string) map[string]interface{} {
	return map[string]interface{}{
		"email":         email,
		"password":      "supersecret1",
		"name":          "Asha Verma",
		"college_id":    college.ID,
		"department_id": department.ID,
		"roll_number":   roll,
	}
}

func TestRegisterClaimsSeat(t *testing.T) {
	app, db := newTestApp(t)
	college, department, seat := seedSeat(t, db)

	resp := postJSON(t, app, "/api/v1/auth/register",
		registerPayload(college, department, "asha.verma@example.com", seat.RollNumber))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			User        UserResponse `json:"user"`
			AccessToken string       `json:"access_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !envelope.Success || envelope.Data.AccessToken == "" {
		t.Errorf("response = %+v", envelope)
	}
	if envelope.Data.User.RollNumber != seat.RollNumber {
		t.Errorf("user roll = %q, want %q", envelope.Data.User.RollNumber, seat.RollNumber)
	}

	var reloaded model.RollNumberSeat
	if err := db.First(&reloaded, seat.ID).Error; err != nil {
		t.Fatalf("failed to reload seat: %v", err)
	}
	if !reloaded.Claimed || reloaded.ClaimedByUserID == nil {
		t.Errorf("seat not claimed: %+v", reloaded)
	}
	if *reloaded.ClaimedByUserID != envelope.Data.User.ID {
		t.Errorf("seat claimed by %d, want %d", *reloaded.ClaimedByUserID, envelope.Data.User.ID)
	}
}

func TestRegisterSeatConflicts(t *testing.T) {
	app, db := newTestApp(t)
	college, department, seat := seedSeat(t, db)

	resp := postJSON(t, app, "/api/v1/auth/register",
		registerPayload(college, department, "first@example.com", seat.RollNumber))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first registration status = %d, want 201", resp.StatusCode)
	}

	// Same seat, different student
	resp = postJSON(t, app, "/api/v1/auth/register",
		registerPayload(college, department, "second@example.com", seat.RollNumber))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("claimed seat status = %d, want 409", resp.StatusCode)
	}

	// Same email again
	resp = postJSON(t, app, "/api/v1/auth/register",
		registerPayload(college, department, "first@example.com", seat.RollNumber))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate email status = %d, want 409", resp.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	app, db := newTestApp(t)
	college, department, _ := seedSeat(t, db)

	// Unknown seat
	resp := postJSON(t, app, "/api/v1/auth/register",
		registerPayload(college, department, "x@example.com", "GECB-CSE-999"))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown seat status = %d, want 404", resp.StatusCode)
	}

	// Malformed roll number
	resp = postJSON(t, app, "/api/v1/auth/register",
		registerPayload(college, department, "x@example.com", "not-a-roll"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad roll status = %d, want 400", resp.StatusCode)
	}

	// Short password
	payload := registerPayload(college, department, "x@example.com", "GECB-CSE-001")
	payload["password"] = "short"
	resp = postJSON(t, app, "/api/v1/auth/register", payload)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("short password status = %d, want 400", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	app, db := newTestApp(t)
	college, department, seat := seedSeat(t, db)

	resp := postJSON(t, app, "/api/v1/auth/register",
		registerPayload(college, department, "asha.verma@example.com", seat.RollNumber))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("registration status = %d, want 201", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/v1/auth/login", map[string]string{
		"email":    "asha.verma@example.com",
		"password": "supersecret1",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Data.AccessToken == "" || envelope.Data.RefreshToken == "" {
		t.Error("token pair missing from login response")
	}

	resp = postJSON(t, app, "/api/v1/auth/login", map[string]string{
		"email":    "asha.verma@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", resp.StatusCode)
	}
}
