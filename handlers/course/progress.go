package course

import (
	"errors"

	"github.com/edusphere/internship-api/services"
	"github.com/edusphere/internship-api/utils/middleware"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ProgressHandler handles topic completion, quiz grading and progress reads
type ProgressHandler struct {
	progress *services.ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// CompleteTopic marks one topic as completed for the caller's enrollment.
// Repeating the call for the same topic is a no-op.
func (h *ProgressHandler) CompleteTopic(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}
	topicID, err := c.ParamsInt("topicID")
	if err != nil || topicID < 1 {
		return response.BadRequest(c, "Invalid topic id")
	}

	result, err := h.progress.CompleteTopic(c.Context(), userID, uint(courseID), uint(topicID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return response.NotFound(c, "You are not enrolled in this course")
		case errors.Is(err, services.ErrTopicNotFound):
			return response.NotFound(c, "Topic not found in this course")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to record topic completion")
	}

	return response.Success(c, result)
}

// GradeQuizRequest carries the student's chosen option index per question, in
// question order
type GradeQuizRequest struct {
	Answers []int `json:"answers" validate:"required"`
}

// GradeQuiz grades a topic quiz server-side and returns only the score
func (h *ProgressHandler) GradeQuiz(c *fiber.Ctx) error {
	if _, ok := middleware.GetUserID(c); !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	topicID, err := c.ParamsInt("topicID")
	if err != nil || topicID < 1 {
		return response.BadRequest(c, "Invalid topic id")
	}

	var req GradeQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.progress.GradeQuiz(c.Context(), uint(topicID), req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTopicNotFound):
			return response.NotFound(c, "No quiz found for this topic")
		case errors.Is(err, services.ErrAnswerCount):
			return response.BadRequest(c, err.Error())
		}
		return response.InternalServerError(c, "Failed to grade quiz")
	}

	return response.Success(c, result)
}

// GetProgress returns the caller's completion state for one course
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return response.BadRequest(c, "Invalid course id")
	}

	progress, err := h.progress.GetProgress(c.Context(), userID, uint(courseID))
	if err != nil {
		if errors.Is(err, services.ErrEnrollmentNotFound) {
			return response.NotFound(c, "You are not enrolled in this course")
		}
		return response.InternalServerError(c, "Failed to load progress")
	}

	return response.Success(c, progress)
}
