package services

import (
	"context"
	"log"
	"time"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/utils/cache"
	"gorm.io/gorm"
)

// dashboardCacheTTL keeps admin dashboard numbers at most this stale
const dashboardCacheTTL = 2 * time.Minute

// AnalyticsService computes admin dashboard aggregates
type AnalyticsService struct {
	db         *gorm.DB
	redisCache *cache.RedisCache
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB, redisCache *cache.RedisCache) *AnalyticsService {
	return &AnalyticsService{db: db, redisCache: redisCache}
}

// Dashboard is the admin overview payload
type Dashboard struct {
	TotalStudents        int64 `json:"total_students"`
	TotalEnrollments     int64 `json:"total_enrollments"`
	PaidEnrollments      int64 `json:"paid_enrollments"`
	CoursesCompleted     int64 `json:"courses_completed"`
	InternshipsUnlocked  int64 `json:"internships_unlocked"`
	InternshipsSubmitted int64 `json:"internships_submitted"`
	CertificatesIssued   int64 `json:"certificates_issued"`
	RevenuePaise         int64 `json:"revenue_paise"`
	AicteIDsTotal        int64 `json:"aicte_ids_total"`
	AicteIDsUsed         int64 `json:"aicte_ids_used"`

	CourseStats []CourseStat `json:"course_stats"`
}

// CourseStat is the per-course funnel breakdown
type CourseStat struct {
	CourseID             uint   `json:"course_id"`
	Title                string `json:"title"`
	Enrollments          int64  `json:"enrollments"`
	CoursesCompleted     int64  `json:"courses_completed"`
	InternshipsUnlocked  int64  `json:"internships_unlocked"`
	InternshipsSubmitted int64  `json:"internships_submitted"`
}

// GetDashboard returns the aggregate view, served from Redis when fresh
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	const cacheKey = "analytics:dashboard"

	if s.redisCache != nil {
		var cached Dashboard
		if err := s.redisCache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	dashboard, err := s.computeDashboard(ctx)
	if err != nil {
		return nil, err
	}

	if s.redisCache != nil {
		if err := s.redisCache.SetJSON(ctx, cacheKey, dashboard, dashboardCacheTTL); err != nil {
			log.Printf("Failed to cache dashboard: %v", err)
		}
	}

	return dashboard, nil
}

func (s *AnalyticsService) computeDashboard(ctx context.Context) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	d := &Dashboard{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&d.TotalStudents, db.Model(&model.User{}).Where("role = ?", model.RoleStudent)},
		{&d.TotalEnrollments, db.Model(&model.Enrollment{})},
		{&d.PaidEnrollments, db.Model(&model.Enrollment{}).Where("is_paid = ?", true)},
		{&d.CoursesCompleted, db.Model(&model.Enrollment{}).Where("course_completed = ?", true)},
		{&d.InternshipsUnlocked, db.Model(&model.Enrollment{}).Where("internship_unlocked = ?", true)},
		{&d.InternshipsSubmitted, db.Model(&model.Enrollment{}).Where("internship_github_repo <> ?", "")},
		{&d.CertificatesIssued, db.Model(&model.Certificate{})},
		{&d.AicteIDsTotal, db.Model(&model.AicteInternship{})},
		{&d.AicteIDsUsed, db.Model(&model.AicteInternship{}).Where("is_used = ?", true)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	err := db.Model(&model.CoursePayment{}).
		Where("status = ?", model.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&d.RevenuePaise).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.Course{}).
		Select(`courses.id AS course_id, courses.title,
			COUNT(enrollments.id) AS enrollments,
			SUM(CASE WHEN enrollments.course_completed THEN 1 ELSE 0 END) AS courses_completed,
			SUM(CASE WHEN enrollments.internship_unlocked THEN 1 ELSE 0 END) AS internships_unlocked,
			SUM(CASE WHEN enrollments.internship_github_repo <> '' THEN 1 ELSE 0 END) AS internships_submitted`).
		Joins("LEFT JOIN enrollments ON enrollments.course_id = courses.id AND enrollments.deleted_at IS NULL").
		Group("courses.id, courses.title").
		Order("courses.id").
		Scan(&d.CourseStats).Error
	if err != nil {
		return nil, err
	}

	return d, nil
}
