package router

import (
	"log"
	"os"
	"time"

	"github.com/edusphere/internship-api/config"
	"github.com/edusphere/internship-api/database"
	"github.com/edusphere/internship-api/handlers"
	admin_handlers "github.com/edusphere/internship-api/handlers/admin"
	auth_handlers "github.com/edusphere/internship-api/handlers/auth"
	certificate_handlers "github.com/edusphere/internship-api/handlers/certificate"
	college_handlers "github.com/edusphere/internship-api/handlers/college"
	course_handlers "github.com/edusphere/internship-api/handlers/course"
	internship_handlers "github.com/edusphere/internship-api/handlers/internship"
	notification_handlers "github.com/edusphere/internship-api/handlers/notification"
	payment_handlers "github.com/edusphere/internship-api/handlers/payment"
	"github.com/edusphere/internship-api/services"
	"github.com/edusphere/internship-api/services/razorpay"
	"github.com/edusphere/internship-api/services/repocheck"
	"github.com/edusphere/internship-api/services/storage"
	"github.com/edusphere/internship-api/utils/auth"
	"github.com/edusphere/internship-api/utils/cache"
	"github.com/edusphere/internship-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services bundles the service layer built by SetupRoutes so the caller can
// reuse it (the cron manager shares the certificate service)
type Services struct {
	Certificates *services.CertificateService
}

func SetupRoutes(app *fiber.App, store database.Storage, rawStore *database.PostgreSQLStore) *Services {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "edusphere-internship-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs brute force protection and the verification cache
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection and caching will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Optional integrations: object storage, payment gateway, repo checks
	spacesClient, err := storage.NewSpacesClientFromEnv()
	if err != nil {
		log.Printf("Warning: Failed to configure object storage: %v. Artifacts stay local.", err)
	}

	getEnv, _ := config.Get()
	razorpayClient := razorpay.NewClient(razorpay.Config{
		KeyID:     getEnv.RAZORPAY_KEY_ID,
		KeySecret: getEnv.RAZORPAY_KEY_SECRET,
	})

	repoChecker := repocheck.NewChecker(repocheck.Config{
		Enabled: os.Getenv("REPO_CHECK_ENABLED") == "true",
	})

	// Service layer
	notificationService := services.NewNotificationService(db)
	certificateService := services.NewCertificateService(db, rawStore, redisCache, spacesClient, notificationService)
	progressService := services.NewProgressService(db, certificateService, notificationService)
	verificationService := services.NewVerificationService(db, notificationService)
	submissionService := services.NewSubmissionService(db, certificateService, notificationService, spacesClient, repoChecker)
	paymentService := services.NewPaymentService(db, razorpayClient, notificationService)
	analyticsService := services.NewAnalyticsService(db, redisCache)
	emailService, err := services.NewEmailServiceFromEnv()
	if err != nil {
		log.Printf("Warning: Failed to configure email: %v", err)
	}

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	if emailService != nil {
		authHandler.SetEmailService(emailService)
	}
	collegeHandler := college_handlers.NewCollegeHandler(db)
	courseHandler := course_handlers.NewCourseHandler(db)
	progressHandler := course_handlers.NewProgressHandler(progressService)
	paymentHandler := payment_handlers.NewPaymentHandler(paymentService)
	internshipHandler := internship_handlers.NewInternshipHandler(verificationService, submissionService)
	certificateHandler := certificate_handlers.NewCertificateHandler(db, certificateService)
	notificationHandler := notification_handlers.NewNotificationHandler(notificationService)
	allowlistHandler := admin_handlers.NewAllowlistHandler(db)
	analyticsHandler := admin_handlers.NewAnalyticsHandler(analyticsService)
	auditHandler := admin_handlers.NewAuditHandler(db)
	settingsHandler := admin_handlers.NewSettingsHandler(db)
	usersHandler := admin_handlers.NewUsersHandler(db)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		if rawStore != nil {
			return handlers.HandleCheckHealth(c, store, rawStore)
		}
		return handlers.HandleCheckHealth(c, store)
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)
	authGroup.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)
	authGroup.Put("/profile", authMiddleware.Required(), authHandler.UpdateProfile)

	// College routes (public reads feed the registration form)
	collegeGroup := api.Group("/colleges")
	collegeGroup.Get("/", collegeHandler.ListColleges)
	collegeGroup.Get("/:id/seats", collegeHandler.ListAvailableSeats)
	collegeGroup.Post("/", authMiddleware.RequireAdmin(),
		middleware.AuditAction(db, "college_create", "colleges"), collegeHandler.CreateCollege)
	collegeGroup.Post("/:id/departments", authMiddleware.RequireAdmin(),
		middleware.AuditAction(db, "department_create", "departments"), collegeHandler.CreateDepartment)
	collegeGroup.Post("/:id/seats", authMiddleware.RequireAdmin(),
		middleware.AuditAction(db, "seat_generate", "roll_number_seats"), collegeHandler.GenerateSeats)

	// Course catalog
	courseGroup := api.Group("/courses")
	courseGroup.Get("/", courseHandler.ListCourses)
	courseGroup.Get("/:id", courseHandler.GetCourse)

	// Course builder (admin only)
	courseGroup.Post("/", authMiddleware.RequireAdmin(),
		middleware.AuditAction(db, "course_create", "courses"), courseHandler.CreateCourse)
	courseGroup.Put("/:id", authMiddleware.RequireAdmin(),
		middleware.AuditAction(db, "course_update", "courses"), courseHandler.UpdateCourse)
	courseGroup.Post("/:id/modules", authMiddleware.RequireAdmin(),
		middleware.AuditAction(db, "module_create", "course_modules"), courseHandler.AddModule)
	courseGroup.Post("/modules/:moduleID/topics", authMiddleware.RequireAdmin(),
		middleware.AuditAction(db, "topic_create", "topics"), courseHandler.AddTopic)
	courseGroup.Post("/topics/:topicID/questions", authMiddleware.RequireAdmin(),
		middleware.AuditAction(db, "question_create", "quiz_questions"), courseHandler.AddQuizQuestion)

	// Progress (students)
	courseGroup.Get("/:id/progress", authMiddleware.Required(), progressHandler.GetProgress)
	courseGroup.Post("/:id/topics/:topicID/complete", authMiddleware.Required(), progressHandler.CompleteTopic)
	courseGroup.Post("/:id/topics/:topicID/quiz", authMiddleware.Required(), progressHandler.GradeQuiz)

	// Payments
	paymentGroup := api.Group("/payments", authMiddleware.Required())
	paymentGroup.Post("/orders", paymentHandler.CreateOrder)
	paymentGroup.Post("/verify", paymentHandler.VerifyPayment)
	paymentGroup.Get("/", paymentHandler.ListMyPayments)

	// Internship
	internshipGroup := api.Group("/internship", authMiddleware.Required())
	internshipGroup.Post("/aicte-id", internshipHandler.SubmitAicteID)
	internshipGroup.Post("/submit", internshipHandler.SubmitRepo)
	internshipGroup.Post("/report", internshipHandler.UploadReport)

	// Certificates
	certificateGroup := api.Group("/certificates")
	certificateGroup.Get("/verify/:certificateID", certificateHandler.Verify) // public
	certificateGroup.Get("/", authMiddleware.Required(), certificateHandler.ListMyCertificates)
	certificateGroup.Get("/:courseID/:type", authMiddleware.Required(), certificateHandler.Download)

	// Notifications
	notificationGroup := api.Group("/notifications", authMiddleware.Required())
	notificationGroup.Get("/", notificationHandler.List)
	notificationGroup.Get("/unread-count", notificationHandler.UnreadCount)
	notificationGroup.Put("/:id/read", notificationHandler.MarkRead)
	notificationGroup.Put("/read-all", notificationHandler.MarkAllRead)

	// Admin
	adminGroup := api.Group("/admin", authMiddleware.RequireAdmin())
	adminGroup.Get("/analytics", analyticsHandler.Dashboard)
	adminGroup.Get("/audit", auditHandler.List)
	adminGroup.Get("/settings", settingsHandler.List)
	adminGroup.Put("/settings/:key",
		middleware.AuditAction(db, "setting_update", "app_settings"), settingsHandler.Update)
	adminGroup.Get("/users", usersHandler.List)
	adminGroup.Get("/users/:id", usersHandler.Get)
	adminGroup.Put("/users/:id/role",
		middleware.AuditAction(db, "user_role_update", "users"), usersHandler.UpdateRole)
	adminGroup.Post("/users/:id/revoke-tokens",
		middleware.AuditAction(db, "user_tokens_revoke", "users"), usersHandler.RevokeTokens)
	adminGroup.Get("/aicte-ids", allowlistHandler.List)
	adminGroup.Post("/aicte-ids",
		middleware.AuditAction(db, "aicte_id_create", "aicte_internships"), allowlistHandler.Create)
	adminGroup.Post("/aicte-ids/bulk",
		middleware.AuditAction(db, "aicte_id_bulk_create", "aicte_internships"), allowlistHandler.BulkCreate)
	adminGroup.Delete("/aicte-ids/:id",
		middleware.AuditAction(db, "aicte_id_delete", "aicte_internships"), allowlistHandler.Delete)

	return &Services{
		Certificates: certificateService,
	}
}
