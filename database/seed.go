package database

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/edusphere/internship-api/model"
	"github.com/edusphere/internship-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedColleges(); err != nil {
		return fmt.Errorf("failed to seed colleges: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedSettings(); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	log.Println("🌱 Database seeding completed!")
	return nil
}

// SeedAdminUser creates the initial admin account
func (s *Seeder) SeedAdminUser() error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@edusphere.app"
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe@123"
		log.Println("Warning: ADMIN_PASSWORD not set, using default. Change it immediately.")
	}

	var existing model.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		log.Println("Admin user already exists, skipping")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user %s", email)
	return nil
}

// SeedColleges creates a demo college with departments and a roll number seat pool
func (s *Seeder) SeedColleges() error {
	var count int64
	s.db.Model(&model.College{}).Count(&count)
	if count > 0 {
		log.Println("Colleges already seeded, skipping")
		return nil
	}

	college := model.College{
		Name:  "Gyan Ganga Institute of Technology",
		Code:  "GGIT",
		City:  "Jabalpur",
		State: "Madhya Pradesh",
	}
	if err := s.db.Create(&college).Error; err != nil {
		return err
	}

	departments := []model.Department{
		{CollegeID: college.ID, Name: "Computer Science & Engineering", Code: "CSE"},
		{CollegeID: college.ID, Name: "Electronics & Communication", Code: "ECE"},
	}
	if err := s.db.Create(&departments).Error; err != nil {
		return err
	}

	// 50 seats per department
	seats := make([]model.RollNumberSeat, 0, 100)
	for _, dept := range departments {
		for i := 1; i <= 50; i++ {
			seats = append(seats, model.RollNumberSeat{
				CollegeID:    college.ID,
				DepartmentID: dept.ID,
				RollNumber:   fmt.Sprintf("%s-%s-%03d", college.Code, dept.Code, i),
			})
		}
	}
	if err := s.db.CreateInBatches(&seats, 100).Error; err != nil {
		return err
	}

	log.Printf("Created college %s with %d departments and %d seats", college.Code, len(departments), len(seats))
	return nil
}

// SeedCourses creates a demo course with course-phase and internship-phase modules
func (s *Seeder) SeedCourses() error {
	var count int64
	s.db.Model(&model.Course{}).Count(&count)
	if count > 0 {
		log.Println("Courses already seeded, skipping")
		return nil
	}

	course := model.Course{
		Title:       "Full Stack Web Development",
		Slug:        "full-stack-web-development",
		Description: "HTML/CSS/JS through React and Node, followed by a guided internship project.",
		Price:       499900, // ₹4999
		Currency:    "INR",
		Published:   true,
	}
	if err := s.db.Create(&course).Error; err != nil {
		return err
	}

	moduleTitles := []string{
		"Web Fundamentals",
		"JavaScript Essentials",
		"Frontend with React",
		"Backend with Node.js",
		"Databases & Deployment",
		"Internship Kickoff",
		"Project Design",
		"Implementation Sprints",
		"Code Review & Testing",
		"Final Delivery",
	}

	for pos, title := range moduleTitles {
		module := model.CourseModule{
			CourseID: course.ID,
			Position: pos,
			Title:    title,
			Phase:    model.DefaultPhaseForPosition(pos),
		}
		if err := s.db.Create(&module).Error; err != nil {
			return err
		}

		// Two topics per module, first with a small quiz
		for t := 0; t < 2; t++ {
			links, _ := json.Marshal([]string{
				fmt.Sprintf("https://videos.edusphere.app/%s/%d-%d", course.Slug, pos, t),
			})
			topic := model.Topic{
				ModuleID:   module.ID,
				Position:   t,
				Title:      fmt.Sprintf("%s — Part %d", title, t+1),
				Content:    "Lesson content goes here.",
				VideoLinks: links,
			}
			if err := s.db.Create(&topic).Error; err != nil {
				return err
			}

			if t == 0 {
				options, _ := json.Marshal([]string{"Option A", "Option B", "Option C", "Option D"})
				question := model.QuizQuestion{
					TopicID:      topic.ID,
					Position:     0,
					Question:     fmt.Sprintf("Checkpoint question for %s?", topic.Title),
					Options:      options,
					CorrectIndex: 1,
				}
				if err := s.db.Create(&question).Error; err != nil {
					return err
				}
			}
		}
	}

	log.Printf("Created course %q with %d modules", course.Title, len(moduleTitles))
	return nil
}

// SeedSettings creates default application settings
func (s *Seeder) SeedSettings() error {
	settings := []model.AppSetting{
		{
			Key:         model.SettingInternshipDurationDays,
			Value:       "30",
			Type:        "int",
			Description: "Days between internship unlock and certificate eligibility",
			Category:    "internship",
		},
		{
			Key:         model.SettingQuizPassPercent,
			Value:       "70",
			Type:        "int",
			Description: "Minimum quiz score percentage to pass a topic checkpoint",
			Category:    "course",
		},
	}

	for _, setting := range settings {
		var existing model.AppSetting
		if err := s.db.Where("key = ?", setting.Key).First(&existing).Error; err == nil {
			continue
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return err
		}
	}

	return nil
}
