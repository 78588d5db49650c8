package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mcq-bot/internal/cache"
	"mcq-bot/internal/domain"

	"go.uber.org/zap"
)

// summaryCache stores BankSummary values as JSON. A nil cache disables it;
// cache failures are logged and never reach the caller.
type summaryCache struct {
	cache  domain.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func newSummaryCache(c domain.Cache, ttl time.Duration, logger *zap.Logger) *summaryCache {
	return &summaryCache{cache: c, ttl: ttl, logger: logger}
}

func (s *summaryCache) get(ctx context.Context, ownerID string) (*domain.BankSummary, bool) {
	if s == nil || s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cache.BankSummaryKey(ownerID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("Bank summary cache read failed", zap.String("owner_id", ownerID), zap.Error(err))
		}
		return nil, false
	}
	var summary domain.BankSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		s.logger.Warn("Discarding undecodable bank summary", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, false
	}
	return &summary, true
}

func (s *summaryCache) set(ctx context.Context, ownerID string, summary *domain.BankSummary) {
	if s == nil || s.cache == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.BankSummaryKey(ownerID), string(raw), s.ttl); err != nil {
		s.logger.Warn("Bank summary cache write failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}

func (s *summaryCache) invalidate(ctx context.Context, ownerID string) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.BankSummaryKey(ownerID)); err != nil {
		s.logger.Warn("Bank summary cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}
