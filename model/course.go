package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Module phases. Phase is an explicit tag on each module; the course builder
// defaults it from position (0-4 course, 5-9 internship) for legacy content.
const (
	PhaseCourse     = "course"
	PhaseInternship = "internship"
)

// Course represents a paid training program with an optional internship phase
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null;default:0" json:"price"` // smallest currency unit (paise)
	Currency    string         `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Published   bool           `gorm:"default:false;index" json:"published"`

	// Relationships
	Modules     []CourseModule  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	Enrollments []Enrollment    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Payments    []CoursePayment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// DefaultPhaseForPosition returns the module phase implied by its position
// under the legacy 0-4 course / 5-9 internship layout.
func DefaultPhaseForPosition(position int) string {
	if position >= 5 {
		return PhaseInternship
	}
	return PhaseCourse
}

// CourseModule is an ordered section of a course belonging to one phase
type CourseModule struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID  uint           `gorm:"not null;index;uniqueIndex:idx_course_position,priority:1" json:"course_id"`
	Position  int            `gorm:"not null;uniqueIndex:idx_course_position,priority:2" json:"position"`
	Title     string         `gorm:"not null" json:"title"`
	Phase     string         `gorm:"type:varchar(20);not null;default:'course';index" json:"phase"` // course, internship

	// Relationships
	Course Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Topics []Topic `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"topics,omitempty"`
}

// TableName specifies the table name for CourseModule
func (CourseModule) TableName() string {
	return "course_modules"
}

// Topic is the unit of progress tracking within a module
type Topic struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	ModuleID   uint           `gorm:"not null;index" json:"module_id"`
	Position   int            `gorm:"not null" json:"position"`
	Title      string         `gorm:"not null" json:"title"`
	Content    string         `gorm:"type:text" json:"content"`
	VideoLinks datatypes.JSON `gorm:"type:jsonb" json:"video_links,omitempty"` // JSON array of URLs

	// Relationships
	Module    CourseModule   `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"-"`
	Questions []QuizQuestion `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// QuizQuestion is a multiple-choice question embedded in a topic. The correct
// option index is graded server-side and never serialized to clients.
type QuizQuestion struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	TopicID      uint           `gorm:"not null;index" json:"topic_id"`
	Position     int            `gorm:"not null" json:"position"`
	Question     string         `gorm:"type:text;not null" json:"question"`
	Options      datatypes.JSON `gorm:"type:jsonb;not null" json:"options"` // JSON array of 4 strings
	CorrectIndex int            `gorm:"not null" json:"-"`

	// Relationships
	Topic Topic `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for QuizQuestion
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
