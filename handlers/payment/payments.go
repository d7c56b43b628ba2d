package payment

import (
	"errors"

	"github.com/edusphere/internship-api/services"
	"github.com/edusphere/internship-api/utils/middleware"
	"github.com/edusphere/internship-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles payment order creation and verification
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	CourseID uint `json:"course_id" validate:"required"`
}

// CreateOrder creates a payment order for a course
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.CourseID == 0 {
		return response.BadRequest(c, "course_id is required")
	}

	order, err := h.payments.CreateOrder(c.Context(), userID, req.CourseID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrDuplicateEnrollment):
			return response.Conflict(c, "You are already enrolled in this course")
		case errors.Is(err, services.ErrPaymentsNotConfigured):
			return response.InternalServerError(c, "Payments are not configured")
		}
		return response.InternalServerError(c, "Failed to create payment order")
	}

	return response.Created(c, order)
}

// VerifyPaymentRequest carries the checkout callback fields from Razorpay
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// VerifyPayment validates the checkout signature and activates the
// enrollment. Safe to replay: a repeated callback returns the existing
// enrollment.
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return response.BadRequest(c, "Order id, payment id, and signature are required")
	}

	enrollment, err := h.payments.VerifyPayment(c.Context(), userID,
		req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPaymentNotFound):
			return response.NotFound(c, "Payment order not found")
		case errors.Is(err, services.ErrInvalidSignature):
			return response.BadRequest(c, "Payment signature verification failed")
		case errors.Is(err, services.ErrPaymentsNotConfigured):
			return response.InternalServerError(c, "Payments are not configured")
		}
		return response.InternalServerError(c, "Failed to verify payment")
	}

	return response.SuccessWithMessage(c, "Payment verified, enrollment active", enrollment)
}

// ListMyPayments returns the caller's payment history
func (h *PaymentHandler) ListMyPayments(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	payments, err := h.payments.PaymentsForUser(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load payments")
	}

	return response.Success(c, payments)
}
