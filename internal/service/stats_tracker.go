package service

import (
	"context"
	"time"

	"mcq-bot/internal/domain"

	"go.uber.org/zap"
)

// StatsTracker is the only writer of answer statistics.
type StatsTracker interface {
	// Update records one graded answer atomically.
	Update(ctx context.Context, ownerID, questionID string, wasCorrect bool) error
	Summary(ctx context.Context, ownerID string) (*domain.StatsSummary, error)
}

type statsTracker struct {
	repo      domain.StatsRepository
	txManager domain.TransactionManager
	summaries *summaryCache
	logger    *zap.Logger
	now       func() time.Time
}

func NewStatsTracker(
	repo domain.StatsRepository,
	txManager domain.TransactionManager,
	cache domain.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) StatsTracker {
	return &statsTracker{
		repo:      repo,
		txManager: txManager,
		summaries: newSummaryCache(cache, cacheTTL, logger),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *statsTracker) Update(ctx context.Context, ownerID, questionID string, wasCorrect bool) error {
	now := s.now().UTC()
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.IncrementTotals(txCtx, ownerID, wasCorrect); err != nil {
			return err
		}
		return s.repo.UpsertHistory(txCtx, ownerID, questionID, wasCorrect, now)
	})
	if err != nil {
		s.logger.Error("Failed to record answer",
			zap.String("owner_id", ownerID),
			zap.String("question_id", questionID),
			zap.Error(err))
		return domain.NewInternalError("failed to record answer", err)
	}
	s.summaries.invalidate(ctx, ownerID)
	return nil
}

func (s *statsTracker) Summary(ctx context.Context, ownerID string) (*domain.StatsSummary, error) {
	record, err := s.repo.GetRecord(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load stats", err)
	}
	return &domain.StatsSummary{
		TotalAnswered: record.TotalAnswered,
		TotalCorrect:  record.TotalCorrect,
		Accuracy:      domain.Accuracy(record.TotalCorrect, record.TotalAnswered),
	}, nil
}
