package services

import (
	"context"
	"strconv"

	"github.com/edusphere/internship-api/model"
	"gorm.io/gorm"
)

// Defaults used when a setting row is absent
const (
	DefaultInternshipDurationDays = 30
	DefaultQuizPassPercent        = 70
)

// SettingsService reads and writes application settings
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService creates a new settings service
func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// GetString returns the setting value or fallback when missing
func (s *SettingsService) GetString(ctx context.Context, key, fallback string) string {
	var setting model.AppSetting
	if err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return fallback
	}
	return setting.Value
}

// GetInt returns the setting value as int or fallback when missing/invalid
func (s *SettingsService) GetInt(ctx context.Context, key string, fallback int) int {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// Set upserts a setting value
func (s *SettingsService) Set(ctx context.Context, key, value, valueType, category string) error {
	var setting model.AppSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err == gorm.ErrRecordNotFound {
		return s.db.WithContext(ctx).Create(&model.AppSetting{
			Key:      key,
			Value:    value,
			Type:     valueType,
			Category: category,
		}).Error
	}
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(&setting).Update("value", value).Error
}

// InternshipDurationDays returns the configured internship window length
func (s *SettingsService) InternshipDurationDays(ctx context.Context) int {
	return s.GetInt(ctx, model.SettingInternshipDurationDays, DefaultInternshipDurationDays)
}

// QuizPassPercent returns the configured quiz pass threshold
func (s *SettingsService) QuizPassPercent(ctx context.Context) int {
	return s.GetInt(ctx, model.SettingQuizPassPercent, DefaultQuizPassPercent)
}
