package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/edusphere/internship-api/database"
	"github.com/edusphere/internship-api/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database migrated to the full
// application schema. Each test gets its own named database so parallel
// tests cannot see each other's rows.
func newTestDB(t *testing.T) *gorm.DB {
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
	// A single connection keeps the shared in-memory database alive for the
	// whole test
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrateAll(db); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	return db
}

// fixture is the standard test world: one student enrolled (paid) in one
// published course with three course-phase topics and one internship-phase
// topic.
type fixture struct {
	user             model.User
	course           model.Course
	enrollment       model.Enrollment
	courseTopics     []model.Topic
	internshipTopics []model.Topic
}

func seedEnrollment(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()

	f := &fixture{}

	f.user = model.User{
		Email:        "asha.verma@example.com",
		PasswordHash: "x",
		Name:         "Asha Verma",
		Role:         model.RoleStudent,
		RollNumber:   "GECB-CSE-001",
	}
	if err := db.Create(&f.user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	f.course = model.Course{
		Title:     "Full Stack Web Development",
		Slug:      "full-stack-web-development",
		Price:     499900,
		Currency:  "INR",
		Published: true,
	}
	if err := db.Create(&f.course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}

	modules := []struct {
		position int
		phase    string
		topics   int
	}{
		{0, model.PhaseCourse, 2},
		{1, model.PhaseCourse, 1},
		{5, model.PhaseInternship, 1},
	}
	for _, spec := range modules {
		mod := model.CourseModule{
			CourseID: f.course.ID,
			Position: spec.position,
			Title:    fmt.Sprintf("Module %d", spec.position),
			Phase:    spec.phase,
		}
		if err := db.Create(&mod).Error; err != nil {
			t.Fatalf("failed to create module: %v", err)
		}
		for i := 0; i < spec.topics; i++ {
			topic := model.Topic{
				ModuleID: mod.ID,
				Position: i,
				Title:    fmt.Sprintf("Topic %d.%d", spec.position, i),
				Content:  "content",
			}
			if err := db.Create(&topic).Error; err != nil {
				t.Fatalf("failed to create topic: %v", err)
			}
			if spec.phase == model.PhaseCourse {
				f.courseTopics = append(f.courseTopics, topic)
			} else {
				f.internshipTopics = append(f.internshipTopics, topic)
			}
		}
	}

	now := time.Now()
	f.enrollment = model.Enrollment{
		UserID:   f.user.ID,
		CourseID: f.course.ID,
		IsPaid:   true,
		PaidAt:   &now,
	}
	if err := db.Create(&f.enrollment).Error; err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}

	return f
}

// unlockInternship flips the enrollment into the internship phase with the
// given window end, the way a successful AICTE verification would.
func unlockInternship(t *testing.T, db *gorm.DB, enrollmentID uint, endsAt time.Time) {
	t.Helper()

	now := time.Now()
	err := db.Model(&model.Enrollment{}).Where("id = ?", enrollmentID).
		Updates(map[string]interface{}{
			"aicte_internship_id":    "AICTE/2026/000123",
			"aicte_verified":         true,
			"internship_unlocked":    true,
			"internship_verified_at": now,
			"internship_started_at":  now,
			"internship_ends_at":     endsAt,
		}).Error
	if err != nil {
		t.Fatalf("failed to unlock internship: %v", err)
	}
}

func reloadEnrollment(t *testing.T, db *gorm.DB, id uint) model.Enrollment {
	t.Helper()

	var enrollment model.Enrollment
	if err := db.First(&enrollment, id).Error; err != nil {
		t.Fatalf("failed to reload enrollment %d: %v", id, err)
	}
	return enrollment
}

func countCertificates(t *testing.T, db *gorm.DB, enrollmentID uint, certType string) int64 {
	t.Helper()

	var n int64
	err := db.Model(&model.Certificate{}).
		Where("enrollment_id = ? AND type = ?", enrollmentID, certType).
		Count(&n).Error
	if err != nil {
		t.Fatalf("failed to count certificates: %v", err)
	}
	return n
}
