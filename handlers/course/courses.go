package course

import (
	"strings"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/utils/middleware"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/edusphere/internship-api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseHandler handles course catalog and course builder requests
type CourseHandler struct {
	db *gorm.DB
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{db: db}
}

// ListCourses returns published courses. Admins see unpublished ones too.
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&model.Course{})
	if user, ok := middleware.GetUser(c); !ok || !user.IsAdmin() {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	var courses []model.Course
	err := query.Order("id ASC").Offset((page - 1) * limit).Limit(limit).Find(&courses).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load courses")
	}

	return response.Paginated(c, courses, response.CalculatePagination(page, limit, total))
}

// GetCourse returns one course with its modules and topics. Internship-phase
// topic content is stripped unless the caller's enrollment has the
// internship unlocked.
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}

	var course model.Course
	err = h.db.Preload("Modules", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Modules.Topics", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Modules.Topics.Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&course, courseID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	user, authed := middleware.GetUser(c)
	if !course.Published && (!authed || !user.IsAdmin()) {
		return response.NotFound(c, "Course not found")
	}

	internshipVisible := false
	if authed {
		if user.IsAdmin() {
			internshipVisible = true
		} else {
			var enrollment model.Enrollment
			if err := h.db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).
				First(&enrollment).Error; err == nil {
				internshipVisible = enrollment.InternshipUnlocked
			}
		}
	}

	// Internship content stays hidden until the phase is unlocked; module
	// and topic titles remain visible so students can see what is coming
	if !internshipVisible {
		for i := range course.Modules {
			if course.Modules[i].Phase != model.PhaseInternship {
				continue
			}
			for j := range course.Modules[i].Topics {
				course.Modules[i].Topics[j].Content = ""
				course.Modules[i].Topics[j].VideoLinks = nil
				course.Modules[i].Topics[j].Questions = nil
			}
		}
	}

	return response.Success(c, course)
}

// CreateCourseRequest represents an admin course creation request
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Slug        string `json:"slug" validate:"required,min=3"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price" validate:"required,min=0"` // paise
	Currency    string `json:"currency,omitempty"`
}

// CreateCourse creates a new unpublished course (admin only)
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Slug = strings.ToLower(validation.SanitizeString(req.Slug))
	if req.Title == "" || req.Slug == "" {
		return response.BadRequest(c, "Title and slug are required")
	}
	if req.Price < 0 {
		return response.BadRequest(c, "Price cannot be negative")
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	var existing model.Course
	if err := h.db.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return response.Conflict(c, "Course with this slug already exists")
	}

	course := model.Course{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Published:   false,
	}
	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// UpdateCourseRequest represents an admin course update request
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

// UpdateCourse updates course fields (admin only)
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = validation.SanitizeString(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return response.BadRequest(c, "Price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	if len(updates) == 0 {
		return response.BadRequest(c, "Nothing to update")
	}

	if err := h.db.Model(&course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// AddModuleRequest represents an admin module creation request
type AddModuleRequest struct {
	Title    string `json:"title" validate:"required,min=2"`
	Position int    `json:"position" validate:"min=0"`
	Phase    string `json:"phase,omitempty"` // course, internship; defaults by position
}

// AddModule appends a module to a course (admin only)
func (h *CourseHandler) AddModule(c *fiber.Ctx) error {
	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}

	var req AddModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}

	if req.Phase == "" {
		req.Phase = model.DefaultPhaseForPosition(req.Position)
	}
	if req.Phase != model.PhaseCourse && req.Phase != model.PhaseInternship {
		return response.BadRequest(c, "Phase must be 'course' or 'internship'")
	}

	var course model.Course
	if err := h.db.First(&course, courseID).Error; err != nil {
		return response.NotFound(c, "Course not found")
	}

	module := model.CourseModule{
		CourseID: course.ID,
		Position: req.Position,
		Title:    req.Title,
		Phase:    req.Phase,
	}
	if err := h.db.Create(&module).Error; err != nil {
		return response.Conflict(c, "A module already exists at this position")
	}

	return response.Created(c, module)
}

// AddTopicRequest represents an admin topic creation request
type AddTopicRequest struct {
	Title      string         `json:"title" validate:"required,min=2"`
	Position   int            `json:"position" validate:"min=0"`
	Content    string         `json:"content,omitempty"`
	VideoLinks datatypes.JSON `json:"video_links,omitempty"`
}

// AddTopic appends a topic to a module (admin only)
func (h *CourseHandler) AddTopic(c *fiber.Ctx) error {
	moduleID, err := c.ParamsInt("moduleID")
	if err != nil || moduleID < 1 {
		return response.BadRequest(c, "Invalid module id")
	}

	var req AddTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}

	var module model.CourseModule
	if err := h.db.First(&module, moduleID).Error; err != nil {
		return response.NotFound(c, "Module not found")
	}

	topic := model.Topic{
		ModuleID:   module.ID,
		Position:   req.Position,
		Title:      req.Title,
		Content:    req.Content,
		VideoLinks: req.VideoLinks,
	}
	if err := h.db.Create(&topic).Error; err != nil {
		return response.InternalServerError(c, "Failed to create topic")
	}

	return response.Created(c, topic)
}

// AddQuizQuestionRequest represents an admin quiz question creation request
type AddQuizQuestionRequest struct {
	Question     string         `json:"question" validate:"required,min=3"`
	Options      datatypes.JSON `json:"options" validate:"required"`
	CorrectIndex int            `json:"correct_index" validate:"min=0,max=3"`
	Position     int            `json:"position" validate:"min=0"`
}

// AddQuizQuestion appends a graded question to a topic (admin only)
func (h *CourseHandler) AddQuizQuestion(c *fiber.Ctx) error {
	topicID, err := c.ParamsInt("topicID")
	if err != nil || topicID < 1 {
		return response.BadRequest(c, "Invalid topic id")
	}

	var req AddQuizQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Question == "" || len(req.Options) == 0 {
		return response.BadRequest(c, "Question and options are required")
	}
	if req.CorrectIndex < 0 || req.CorrectIndex > 3 {
		return response.BadRequest(c, "Correct index must be between 0 and 3")
	}

	var topic model.Topic
	if err := h.db.First(&topic, topicID).Error; err != nil {
		return response.NotFound(c, "Topic not found")
	}

	question := model.QuizQuestion{
		TopicID:      topic.ID,
		Position:     req.Position,
		Question:     req.Question,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
	}
	if err := h.db.Create(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to create question")
	}

	return response.Created(c, question)
}
