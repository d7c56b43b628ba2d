package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/services/razorpay"
	"github.com/edusphere/internship-api/utils/crypto"
	"gorm.io/gorm"
)

const testKeySecret = "test_secret"

// newGatewayServer fakes the Razorpay orders endpoint
func newGatewayServer(t *testing.T) *httptest.Server {
	t.Helper()

	var orderSeq int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/orders" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		orderSeq++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       fmt.Sprintf("order_test%03d", orderSeq),
			"amount":   req.Amount,
			"currency": req.Currency,
			"receipt":  req.Receipt,
			"status":   "created",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newPaymentFixture(t *testing.T) (*PaymentService, *gorm.DB, *fixture) {
	t.Helper()

	db := newTestDB(t)
	f := seedEnrollment(t, db)

	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:     "rzp_test_key",
		KeySecret: testKeySecret,
		BaseURL:   newGatewayServer(t).URL,
	})
	return NewPaymentService(db, gateway, NewNotificationService(db)), db, f
}

func TestCreateOrder(t *testing.T) {
	svc, db, f := newPaymentFixture(t)
	ctx := context.Background()

	// A fresh student enrolling in the fixture course
	student := model.User{Email: "ravi.kumar@example.com", PasswordHash: "x", Name: "Ravi Kumar"}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	order, err := svc.CreateOrder(ctx, student.ID, f.course.ID)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.OrderID == "" {
		t.Error("order id missing")
	}
	if order.Amount != f.course.Price || order.Currency != "INR" {
		t.Errorf("order = %+v, want course price in INR", order)
	}

	var payment model.CoursePayment
	if err := db.Where("razorpay_order_id = ?", order.OrderID).First(&payment).Error; err != nil {
		t.Fatalf("payment row missing: %v", err)
	}
	if payment.Status != model.PaymentStatusPending || payment.UserID != student.ID {
		t.Errorf("payment = %+v", payment)
	}
}

func TestCreateOrderRejectsUnpublishedCourse(t *testing.T) {
	svc, db, f := newPaymentFixture(t)
	ctx := context.Background()

	draft := model.Course{Title: "Draft", Slug: "draft", Price: 100000}
	if err := db.Create(&draft).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	if _, err := svc.CreateOrder(ctx, f.user.ID, draft.ID); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("draft course: got %v, want ErrCourseNotFound", err)
	}
	if _, err := svc.CreateOrder(ctx, f.user.ID, 99999); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("missing course: got %v, want ErrCourseNotFound", err)
	}
}

func TestCreateOrderRejectsPaidEnrollment(t *testing.T) {
	svc, _, f := newPaymentFixture(t)

	// The fixture enrollment is already paid
	if _, err := svc.CreateOrder(context.Background(), f.user.ID, f.course.ID); !errors.Is(err, ErrDuplicateEnrollment) {
		t.Errorf("got %v, want ErrDuplicateEnrollment", err)
	}
}

func TestVerifyPaymentCreatesEnrollment(t *testing.T) {
	svc, db, f := newPaymentFixture(t)
	ctx := context.Background()

	student := model.User{Email: "meera.iyer@example.com", PasswordHash: "x", Name: "Meera Iyer"}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	order, err := svc.CreateOrder(ctx, student.ID, f.course.ID)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	paymentID := "pay_test001"
	signature := crypto.SignHMAC(order.OrderID+"|"+paymentID, testKeySecret)

	enrollment, err := svc.VerifyPayment(ctx, student.ID, order.OrderID, paymentID, signature)
	if err != nil {
		t.Fatalf("VerifyPayment failed: %v", err)
	}
	if !enrollment.IsPaid || enrollment.PaidAt == nil {
		t.Errorf("enrollment = %+v, want paid", enrollment)
	}
	if enrollment.UserID != student.ID || enrollment.CourseID != f.course.ID {
		t.Errorf("enrollment bound to (%d, %d)", enrollment.UserID, enrollment.CourseID)
	}

	var payment model.CoursePayment
	if err := db.Where("razorpay_order_id = ?", order.OrderID).First(&payment).Error; err != nil {
		t.Fatalf("payment row missing: %v", err)
	}
	if payment.Status != model.PaymentStatusCompleted || payment.RazorpayPaymentID != paymentID {
		t.Errorf("payment = %+v", payment)
	}

	// A replayed callback converges on the same enrollment
	replay, err := svc.VerifyPayment(ctx, student.ID, order.OrderID, paymentID, signature)
	if err != nil {
		t.Fatalf("replayed VerifyPayment failed: %v", err)
	}
	if replay.ID != enrollment.ID {
		t.Errorf("replay created enrollment %d, want %d", replay.ID, enrollment.ID)
	}

	var enrollments int64
	if err := db.Model(&model.Enrollment{}).Where("user_id = ?", student.ID).Count(&enrollments).Error; err != nil {
		t.Fatalf("failed to count enrollments: %v", err)
	}
	if enrollments != 1 {
		t.Errorf("enrollments = %d, want 1", enrollments)
	}
}

func TestVerifyPaymentRejectsBadSignature(t *testing.T) {
	svc, db, f := newPaymentFixture(t)
	ctx := context.Background()

	student := model.User{Email: "dev.patel@example.com", PasswordHash: "x", Name: "Dev Patel"}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	order, err := svc.CreateOrder(ctx, student.ID, f.course.ID)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	_, err = svc.VerifyPayment(ctx, student.ID, order.OrderID, "pay_test002", "forged")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("got %v, want ErrInvalidSignature", err)
	}

	var payment model.CoursePayment
	if err := db.Where("razorpay_order_id = ?", order.OrderID).First(&payment).Error; err != nil {
		t.Fatalf("payment row missing: %v", err)
	}
	if payment.Status != model.PaymentStatusFailed {
		t.Errorf("payment status = %q, want failed", payment.Status)
	}

	var enrollments int64
	if err := db.Model(&model.Enrollment{}).Where("user_id = ?", student.ID).Count(&enrollments).Error; err != nil {
		t.Fatalf("failed to count enrollments: %v", err)
	}
	if enrollments != 0 {
		t.Errorf("forged signature created %d enrollments", enrollments)
	}
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	svc, _, f := newPaymentFixture(t)

	_, err := svc.VerifyPayment(context.Background(), f.user.ID, "order_missing", "pay_x", "sig")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("got %v, want ErrPaymentNotFound", err)
	}
}

func TestPaymentsNotConfigured(t *testing.T) {
	db := newTestDB(t)
	f := seedEnrollment(t, db)
	svc := NewPaymentService(db, razorpay.NewClient(razorpay.Config{}), nil)

	if _, err := svc.CreateOrder(context.Background(), f.user.ID, f.course.ID); !errors.Is(err, ErrPaymentsNotConfigured) {
		t.Errorf("CreateOrder: got %v, want ErrPaymentsNotConfigured", err)
	}
	if _, err := svc.VerifyPayment(context.Background(), f.user.ID, "o", "p", "s"); !errors.Is(err, ErrPaymentsNotConfigured) {
		t.Errorf("VerifyPayment: got %v, want ErrPaymentsNotConfigured", err)
	}
}

func TestPaymentsForUser(t *testing.T) {
	svc, db, f := newPaymentFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		payment := model.CoursePayment{
			UserID:          f.user.ID,
			CourseID:        f.course.ID,
			RazorpayOrderID: fmt.Sprintf("order_hist%03d", i),
			Amount:          100000,
			Currency:        "INR",
			Status:          model.PaymentStatusCompleted,
			CreatedAt:       time.Now().Add(time.Duration(-i) * time.Hour),
		}
		if err := db.Create(&payment).Error; err != nil {
			t.Fatalf("failed to create payment: %v", err)
		}
	}

	payments, err := svc.PaymentsForUser(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("PaymentsForUser failed: %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(payments))
	}
}
