package college

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edusphere/internship-api/database"
	"github.com/edusphere/internship-api/model"
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

	handler := NewCollegeHandler(db)
	app := fiber.New()
	app.Get("/api/v1/colleges", handler.ListColleges)
	app.Get("/api/v1/colleges/:id/seats", handler.ListAvailableSeats)

	return app, db
}

func TestListColleges(t *testing.T) {
	app, db := newTestApp(t)

	college := model.College{Name: "Gov. Engineering College Bhopal", Code: "GECB", City: "Bhopal", State: "MP"}
	if err := db.Create(&college).Error; err != nil {
		t.Fatalf("failed to create college: %v", err)
	}
	department := model.Department{CollegeID: college.ID, Name: "Computer Science", Code: "CSE"}
	if err := db.Create(&department).Error; err != nil {
		t.Fatalf("failed to create department: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/colleges", nil), 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    []model.College `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Code != "GECB" {
		t.Errorf("colleges = %+v", envelope.Data)
	}
	if len(envelope.Data[0].Departments) != 1 {
		t.Errorf("departments not preloaded: %+v", envelope.Data[0])
	}
}

func TestListAvailableSeats(t *testing.T) {
	app, db := newTestApp(t)

	college := model.College{Name: "Gov. Engineering College Bhopal", Code: "GECB"}
	if err := db.Create(&college).Error; err != nil {
		t.Fatalf("failed to create college: %v", err)
	}
	department := model.Department{CollegeID: college.ID, Name: "Computer Science", Code: "CSE"}
	if err := db.Create(&department).Error; err != nil {
		t.Fatalf("failed to create department: %v", err)
	}

	now := time.Now()
	userID := uint(1)
	seats := []model.RollNumberSeat{
		{CollegeID: college.ID, DepartmentID: department.ID, RollNumber: "GECB-CSE-001"},
		{CollegeID: college.ID, DepartmentID: department.ID, RollNumber: "GECB-CSE-002",
			Claimed: true, ClaimedByUserID: &userID, ClaimedAt: &now},
		{CollegeID: college.ID, DepartmentID: department.ID, RollNumber: "GECB-CSE-003"},
	}
	for i := range seats {
		if err := db.Create(&seats[i]).Error; err != nil {
			t.Fatalf("failed to create seat: %v", err)
		}
	}

	url := fmt.Sprintf("/api/v1/colleges/%d/seats?department_id=%d", college.ID, department.ID)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil), 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			Available   int      `json:"available"`
			RollNumbers []string `json:"roll_numbers"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Data.Available != 2 || len(envelope.Data.RollNumbers) != 2 {
		t.Fatalf("available seats = %+v, want the 2 unclaimed seats", envelope.Data)
	}
	for _, roll := range envelope.Data.RollNumbers {
		if roll == "GECB-CSE-002" {
			t.Error("claimed seat listed as available")
		}
	}

	// Missing department filter is a client error
	url = fmt.Sprintf("/api/v1/colleges/%d/seats", college.ID)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, url, nil), 10000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
