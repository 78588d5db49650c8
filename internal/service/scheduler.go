package service

import (
	"context"
	"time"

	"mcq-bot/internal/domain"

	"go.uber.org/zap"
)

// QuizNotifier delivers a scheduled quiz to its owner.
type QuizNotifier interface {
	NotifyQuizStarted(ctx context.Context, ownerID string, start *QuizStart) error
}

// LogNotifier records scheduled quizzes in the log only.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) NotifyQuizStarted(_ context.Context, ownerID string, start *QuizStart) error {
	n.Logger.Info("Scheduled quiz ready",
		zap.String("owner_id", ownerID),
		zap.Int("questions", start.Total))
	return nil
}

// Scheduler fires each user's daily quiz at most once per slot.
type Scheduler struct {
	settings domain.SettingsRepository
	sessions SessionManager
	notifier QuizNotifier
	interval time.Duration
	window   time.Duration
	logger   *zap.Logger
}

func NewScheduler(
	settings domain.SettingsRepository,
	sessions SessionManager,
	notifier QuizNotifier,
	interval, window time.Duration,
	logger *zap.Logger,
) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{Logger: logger}
	}
	return &Scheduler{
		settings: settings,
		sessions: sessions,
		notifier: notifier,
		interval: interval,
		window:   window,
		logger:   logger,
	}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval), zap.Duration("window", s.window))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case now := <-ticker.C:
			if fired, err := s.Tick(ctx, now); err != nil {
				s.logger.Error("Scheduler tick failed", zap.Error(err))
			} else if fired > 0 {
				s.logger.Debug("Scheduler tick", zap.Int("fired", fired))
			}
		}
	}
}

// Tick fires every slot due at now and returns how many quizzes it launched.
// Per-user failures are logged and do not stop the tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (int, error) {
	all, err := s.settings.ListSettings(ctx)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, settings := range all {
		if ctx.Err() != nil {
			return fired, ctx.Err()
		}
		log := s.logger.With(zap.String("owner_id", settings.OwnerID))

		slot, due, err := settings.DueSlot(now, s.window)
		if err != nil {
			log.Warn("Skipping invalid schedule", zap.Error(err))
			continue
		}
		if !due {
			continue
		}

		claimed, err := s.settings.ClaimSlot(ctx, settings.OwnerID, slot)
		if err != nil {
			log.Error("Failed to claim slot", zap.Time("slot", slot), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		if s.launch(ctx, settings, log) {
			fired++
		}
	}
	return fired, nil
}

func (s *Scheduler) launch(ctx context.Context, settings *domain.UserSettings, log *zap.Logger) bool {
	start, err := s.sessions.Start(ctx, settings.OwnerID, settings.DailyQuestionCount)
	switch {
	case domain.IsCode(err, domain.CodeInvalidState):
		log.Info("Skipping scheduled quiz, a quiz is already in progress")
		return false
	case domain.IsCode(err, domain.CodeNotFound):
		log.Info("Skipping scheduled quiz, question bank is empty")
		return false
	case err != nil:
		log.Error("Failed to start scheduled quiz", zap.Error(err))
		return false
	}

	if err := s.notifier.NotifyQuizStarted(ctx, settings.OwnerID, start); err != nil {
		log.Warn("Failed to deliver scheduled quiz", zap.Error(err))
	}
	return true
}
