package college

import (
	"fmt"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/edusphere/internship-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CollegeHandler handles college and roll-number seat requests
type CollegeHandler struct {
	db *gorm.DB
}

// NewCollegeHandler creates a new college handler
func NewCollegeHandler(db *gorm.DB) *CollegeHandler {
	return &CollegeHandler{db: db}
}

// ListColleges returns all colleges with their departments. Public: the
// registration form needs it before any account exists.
func (h *CollegeHandler) ListColleges(c *fiber.Ctx) error {
	var colleges []model.College
	if err := h.db.Preload("Departments").Order("name ASC").Find(&colleges).Error; err != nil {
		return response.InternalServerError(c, "Failed to load colleges")
	}

	return response.Success(c, colleges)
}

// ListAvailableSeats returns the unclaimed roll numbers for a department so
// the registration form can offer them
func (h *CollegeHandler) ListAvailableSeats(c *fiber.Ctx) error {
	collegeID, err := c.ParamsInt("id")
	if err != nil || collegeID < 1 {
		return response.BadRequest(c, "Invalid college id")
	}
	departmentID := c.QueryInt("department_id")
	if departmentID < 1 {
		return response.BadRequest(c, "department_id query parameter is required")
	}

	var rollNumbers []string
	err = h.db.Model(&model.RollNumberSeat{}).
		Where("college_id = ? AND department_id = ? AND claimed = ?", collegeID, departmentID, false).
		Order("roll_number ASC").
		Pluck("roll_number", &rollNumbers).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load seats")
	}

	return response.Success(c, fiber.Map{
		"college_id":    collegeID,
		"department_id": departmentID,
		"available":     len(rollNumbers),
		"roll_numbers":  rollNumbers,
	})
}

// CreateCollegeRequest represents an admin college creation request
type CreateCollegeRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Code  string `json:"code" validate:"required,min=2,max=20"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// CreateCollege creates a new partner college (admin only)
func (h *CollegeHandler) CreateCollege(c *fiber.Ctx) error {
	var req CreateCollegeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Code = validation.SanitizeString(req.Code)
	if req.Name == "" || req.Code == "" {
		return response.BadRequest(c, "Name and code are required")
	}

	var existing model.College
	if err := h.db.Where("code = ?", req.Code).First(&existing).Error; err == nil {
		return response.Conflict(c, "College with this code already exists")
	}

	college := model.College{
		Name:  req.Name,
		Code:  req.Code,
		City:  validation.SanitizeString(req.City),
		State: validation.SanitizeString(req.State),
	}
	if err := h.db.Create(&college).Error; err != nil {
		return response.InternalServerError(c, "Failed to create college")
	}

	return response.Created(c, college)
}

// CreateDepartmentRequest represents an admin department creation request
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,min=2"`
	Code string `json:"code" validate:"required,min=2,max=10"`
}

// CreateDepartment adds a department to a college (admin only)
func (h *CollegeHandler) CreateDepartment(c *fiber.Ctx) error {
	collegeID, err := c.ParamsInt("id")
	if err != nil || collegeID < 1 {
		return response.BadRequest(c, "Invalid college id")
	}

	var req CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = validation.SanitizeString(req.Name)
	req.Code = validation.SanitizeString(req.Code)
	if req.Name == "" || req.Code == "" {
		return response.BadRequest(c, "Name and code are required")
	}

	var college model.College
	if err := h.db.First(&college, collegeID).Error; err != nil {
		return response.NotFound(c, "College not found")
	}

	department := model.Department{
		CollegeID: college.ID,
		Name:      req.Name,
		Code:      req.Code,
	}
	if err := h.db.Create(&department).Error; err != nil {
		return response.InternalServerError(c, "Failed to create department")
	}

	return response.Created(c, department)
}

// GenerateSeatsRequest represents an admin seat generation request
type GenerateSeatsRequest struct {
	DepartmentID uint `json:"department_id" validate:"required"`
	Count        int  `json:"count" validate:"required,min=1,max=1000"`
}

// GenerateSeats pre-generates sequential roll-number seats for a department
// (admin only). Numbering continues after the highest existing seat.
func (h *CollegeHandler) GenerateSeats(c *fiber.Ctx) error {
	collegeID, err := c.ParamsInt("id")
	if err != nil || collegeID < 1 {
		return response.BadRequest(c, "Invalid college id")
	}

	var req GenerateSeatsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Count < 1 || req.Count > 1000 {
		return response.BadRequest(c, "Count must be between 1 and 1000")
	}

	var college model.College
	if err := h.db.First(&college, collegeID).Error; err != nil {
		return response.NotFound(c, "College not found")
	}

	var department model.Department
	if err := h.db.Where("id = ? AND college_id = ?", req.DepartmentID, college.ID).First(&department).Error; err != nil {
		return response.NotFound(c, "Department not found in this college")
	}

	var existing int64
	if err := h.db.Model(&model.RollNumberSeat{}).
		Where("college_id = ? AND department_id = ?", college.ID, department.ID).
		Count(&existing).Error; err != nil {
		return response.InternalServerError(c, "Failed to count existing seats")
	}

	seats := make([]model.RollNumberSeat, 0, req.Count)
	for i := 1; i <= req.Count; i++ {
		seats = append(seats, model.RollNumberSeat{
			CollegeID:    college.ID,
			DepartmentID: department.ID,
			RollNumber:   fmt.Sprintf("%s-%s-%03d", college.Code, department.Code, int(existing)+i),
		})
	}

	if err := h.db.Create(&seats).Error; err != nil {
		return response.InternalServerError(c, "Failed to generate seats")
	}

	return response.Created(c, fiber.Map{
		"generated":  len(seats),
		"first_roll": seats[0].RollNumber,
		"last_roll":  seats[len(seats)-1].RollNumber,
	})
}
