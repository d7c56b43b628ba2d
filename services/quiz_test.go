package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/edusphere/internship-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func seedQuiz(t *testing.T, db *gorm.DB, topicID uint, correct []int) {
	t.Helper()

	options := datatypes.JSON([]byte(`["A","B","C","D"]`))
	for i, idx := range correct {
		q := model.QuizQuestion{
			TopicID:      topicID,
			Position:     i,
			Question:     fmt.Sprintf("Question %d", i+1),
			Options:      options,
			CorrectIndex: idx,
		}
		if err := db.Create(&q).Error; err != nil {
			t.Fatalf("failed to create quiz question: %v", err)
		}
	}
}

func TestGradeQuizScoresAgainstStoredAnswers(t *testing.T) {
	svc, db, f := newProgressFixture(t)
	ctx := context.Background()
	topicID := f.courseTopics[0].ID

	seedQuiz(t, db, topicID, []int{0, 2, 1, 3})

	result, err := svc.GradeQuiz(ctx, topicID, []int{0, 2, 1, 3})
	if err != nil {
		t.Fatalf("GradeQuiz failed: %v", err)
	}
	if result.ScorePercent != 100 || !result.Passed {
		t.Errorf("perfect submission = %+v, want 100%% passed", result)
	}

	result, err = svc.GradeQuiz(ctx, topicID, []int{0, 2, 0, 0})
	if err != nil {
		t.Fatalf("GradeQuiz failed: %v", err)
	}
	if result.CorrectAnswers != 2 || result.ScorePercent != 50 {
		t.Errorf("half-right submission = %+v, want 2 correct at 50%%", result)
	}
	if result.Passed {
		t.Error("50%% passed against the default 70%% threshold")
	}
}

func TestGradeQuizRejectsWrongAnswerCount(t *testing.T) {
	svc, db, f := newProgressFixture(t)
	ctx := context.Background()
	topicID := f.courseTopics[0].ID

	seedQuiz(t, db, topicID, []int{0, 1})

	if _, err := svc.GradeQuiz(ctx, topicID, []int{0}); !errors.Is(err, ErrAnswerCount) {
		t.Errorf("short submission: got %v, want ErrAnswerCount", err)
	}
	if _, err := svc.GradeQuiz(ctx, topicID, []int{0, 1, 2}); !errors.Is(err, ErrAnswerCount) {
		t.Errorf("long submission: got %v, want ErrAnswerCount", err)
	}
}

func TestGradeQuizRequiresQuestions(t *testing.T) {
	svc, _, f := newProgressFixture(t)

	if _, err := svc.GradeQuiz(context.Background(), f.courseTopics[1].ID, nil); !errors.Is(err, ErrTopicNotFound) {
		t.Errorf("got %v, want ErrTopicNotFound", err)
	}
}

func TestGradeQuizHonorsConfiguredThreshold(t *testing.T) {
	svc, db, f := newProgressFixture(t)
	ctx := context.Background()
	topicID := f.courseTopics[0].ID

	seedQuiz(t, db, topicID, []int{0, 1, 2, 3})

	settings := NewSettingsService(db)
	if err := settings.Set(ctx, model.SettingQuizPassPercent, "50", "int", "progress"); err != nil {
		t.Fatalf("failed to set threshold: %v", err)
	}

	result, err := svc.GradeQuiz(ctx, topicID, []int{0, 1, 0, 0})
	if err != nil {
		t.Fatalf("GradeQuiz failed: %v", err)
	}
	if result.ScorePercent != 50 || !result.Passed {
		t.Errorf("result = %+v, want 50%% passing at the lowered threshold", result)
	}
}
