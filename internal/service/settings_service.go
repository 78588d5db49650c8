package service

import (
	"context"
	"strings"

	"mcq-bot/internal/config"
	"mcq-bot/internal/domain"

	"go.uber.org/zap"
)

// SettingsUpdate is a partial settings change; nil fields keep their value.
type SettingsUpdate struct {
	DailyQuizTime      *string
	Timezone           *string
	Frequency          *string
	MinQuestions       *int
	MaxQuestions       *int
	DailyQuestionCount *int
}

type SettingsService interface {
	// Get returns the stored settings, or the configured defaults.
	Get(ctx context.Context, ownerID string) (*domain.UserSettings, error)
	Update(ctx context.Context, ownerID string, update SettingsUpdate) (*domain.UserSettings, error)
}

type settingsService struct {
	repo     domain.SettingsRepository
	defaults config.Config
	logger   *zap.Logger
}

func NewSettingsService(repo domain.SettingsRepository, cfg *config.Config, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, defaults: *cfg, logger: logger}
}

func (s *settingsService) defaultSettings(ownerID string) *domain.UserSettings {
	freq, err := domain.ParseFrequency(s.defaults.Scheduler.DefaultFrequency)
	if err != nil {
		s.logger.Warn("Invalid default frequency, using daily",
			zap.String("frequency", s.defaults.Scheduler.DefaultFrequency))
		freq = domain.Frequency{Kind: domain.FrequencyDaily}
	}
	return &domain.UserSettings{
		OwnerID:            ownerID,
		DailyQuizTime:      s.defaults.Scheduler.DefaultQuizTime,
		Timezone:           s.defaults.Scheduler.DefaultTimezone,
		Frequency:          freq,
		MinQuestions:       s.defaults.Generation.MinQuestions,
		MaxQuestions:       s.defaults.Generation.MaxQuestions,
		DailyQuestionCount: s.defaults.Generation.DefaultDailyQuestion,
	}
}

func (s *settingsService) Get(ctx context.Context, ownerID string) (*domain.UserSettings, error) {
	stored, err := s.repo.GetSettings(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load settings", err)
	}
	if stored == nil {
		return s.defaultSettings(ownerID), nil
	}
	return stored, nil
}

func (s *settingsService) Update(ctx context.Context, ownerID string, update SettingsUpdate) (*domain.UserSettings, error) {
	settings, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var errs domain.ValidationErrors
	if update.DailyQuizTime != nil {
		settings.DailyQuizTime = strings.TrimSpace(*update.DailyQuizTime)
	}
	if update.Timezone != nil {
		settings.Timezone = strings.TrimSpace(*update.Timezone)
	}
	if update.Frequency != nil {
		freq, err := domain.ParseFrequency(*update.Frequency)
		if err != nil {
			errs = append(errs, domain.NewInvalidFormatError("frequency", *update.Frequency))
		} else {
			settings.Frequency = freq
		}
	}
	if update.MinQuestions != nil {
		settings.MinQuestions = *update.MinQuestions
	}
	if update.MaxQuestions != nil {
		settings.MaxQuestions = *update.MaxQuestions
	}
	if update.DailyQuestionCount != nil {
		settings.DailyQuestionCount = *update.DailyQuestionCount
	}

	errs = append(errs, settings.Validate(s.defaults.Generation.MaxQuestionsCeiling)...)
	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return nil, domain.NewInternalError("failed to save settings", err)
	}
	s.logger.Info("Settings updated",
		zap.String("owner_id", ownerID),
		zap.String("daily_quiz_time", settings.DailyQuizTime),
		zap.String("frequency", settings.Frequency.String()))
	return settings, nil
}
