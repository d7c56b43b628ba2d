package services

import (
	"context"
	"testing"

	"github.com/edusphere/internship-api/model"
)

func TestSettingsDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()

	if got := svc.InternshipDurationDays(ctx); got != DefaultInternshipDurationDays {
		t.Errorf("duration = %d, want default %d", got, DefaultInternshipDurationDays)
	}
	if got := svc.QuizPassPercent(ctx); got != DefaultQuizPassPercent {
		t.Errorf("pass percent = %d, want default %d", got, DefaultQuizPassPercent)
	}
}

func TestSettingsSetAndOverwrite(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()

	if err := svc.Set(ctx, model.SettingInternshipDurationDays, "45", "int", "internship"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := svc.InternshipDurationDays(ctx); got != 45 {
		t.Errorf("duration = %d, want 45", got)
	}

	if err := svc.Set(ctx, model.SettingInternshipDurationDays, "60", "int", "internship"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if got := svc.InternshipDurationDays(ctx); got != 60 {
		t.Errorf("duration = %d, want 60", got)
	}

	var rows int64
	if err := db.Model(&model.AppSetting{}).Where("key = ?", model.SettingInternshipDurationDays).Count(&rows).Error; err != nil {
		t.Fatalf("failed to count settings: %v", err)
	}
	if rows != 1 {
		t.Errorf("setting rows = %d, want 1", rows)
	}
}

func TestSettingsInvalidValueFallsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)
	ctx := context.Background()

	if err := svc.Set(ctx, model.SettingQuizPassPercent, "not-a-number", "int", "progress"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := svc.QuizPassPercent(ctx); got != DefaultQuizPassPercent {
		t.Errorf("pass percent = %d, want fallback %d", got, DefaultQuizPassPercent)
	}
}
