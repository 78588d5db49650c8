package service

import (
	"context"
	"math/rand"
	"time"

	"mcq-bot/internal/domain"
	"mcq-bot/internal/util"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// BankService owns every mutation of a user's questions and knowledge.
type BankService interface {
	// Add stores one chunk together with its questions in a single transaction.
	Add(ctx context.Context, chunk *domain.KnowledgeChunk, questions []*domain.Question) error
	AddCustom(ctx context.Context, ownerID string, draft domain.QuestionDraft) (*domain.Question, error)
	// Sample draws up to count distinct questions uniformly at random.
	Sample(ctx context.Context, ownerID string, count int) ([]*domain.Question, error)
	Edit(ctx context.Context, ownerID, questionID string, patch domain.QuestionPatch) (*domain.Question, error)
	Delete(ctx context.Context, ownerID, questionID string) error
	ClearQuestions(ctx context.Context, ownerID string) (int64, error)
	ClearKnowledge(ctx context.Context, ownerID string) (int64, error)
	Get(ctx context.Context, ownerID, questionID string) (*domain.QuestionView, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Question, error)
	Stats(ctx context.Context, ownerID string) (*domain.BankSummary, error)
}

type bankService struct {
	questions domain.QuestionRepository
	knowledge domain.KnowledgeRepository
	stats     domain.StatsRepository
	txManager domain.TransactionManager
	summaries *summaryCache
	logger    *zap.Logger

	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
}

func NewBankService(
	questions domain.QuestionRepository,
	knowledge domain.KnowledgeRepository,
	stats domain.StatsRepository,
	txManager domain.TransactionManager,
	cache domain.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) BankService {
	return &bankService{
		questions: questions,
		knowledge: knowledge,
		stats:     stats,
		txManager: txManager,
		summaries: newSummaryCache(cache, cacheTTL, logger),
		logger:    logger,
		shuffle:   rand.Shuffle,
		now:       time.Now,
	}
}

func (s *bankService) Add(ctx context.Context, chunk *domain.KnowledgeChunk, questions []*domain.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		q.OwnerID = chunk.OwnerID
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.knowledge.SaveChunk(txCtx, chunk); err != nil {
			return err
		}
		for _, q := range questions {
			q.SourceChunkID = chunk.ID
		}
		return s.questions.SaveQuestions(txCtx, questions)
	})
	if err != nil {
		s.logger.Error("Failed to store chunk",
			zap.String("owner_id", chunk.OwnerID),
			zap.Int("chunk_index", chunk.ChunkIndex),
			zap.Error(err))
		return domain.NewInternalError("failed to store questions", err)
	}

	s.summaries.invalidate(ctx, chunk.OwnerID)
	return nil
}

func (s *bankService) AddCustom(ctx context.Context, ownerID string, draft domain.QuestionDraft) (*domain.Question, error) {
	now := s.now().UTC()
	q := &domain.Question{
		ID:           util.NewULID(),
		OwnerID:      ownerID,
		Text:         draft.Text,
		Options:      append([]string(nil), draft.Options...),
		CorrectIndex: draft.CorrectIndex,
		Explanation:  draft.Explanation,
		IsCustom:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	q.Normalize()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if err := s.questions.SaveQuestions(ctx, []*domain.Question{q}); err != nil {
		return nil, domain.NewInternalError("failed to store custom question", err)
	}
	s.summaries.invalidate(ctx, ownerID)

	s.logger.Info("Custom question added", zap.String("owner_id", ownerID), zap.String("question_id", q.ID))
	return q, nil
}

func (s *bankService) Sample(ctx context.Context, ownerID string, count int) ([]*domain.Question, error) {
	if count < 1 {
		return nil, domain.NewInvalidInputError("question count must be positive")
	}
	ids, err := s.questions.ListQuestionIDs(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list questions", err)
	}
	if len(ids) == 0 {
		return []*domain.Question{}, nil
	}

	s.shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	if count < len(ids) {
		ids = ids[:count]
	}

	questions, err := s.questions.GetQuestionsByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, domain.NewInternalError("failed to load sampled questions", err)
	}
	return questions, nil
}

func (s *bankService) Edit(ctx context.Context, ownerID, questionID string, patch domain.QuestionPatch) (*domain.Question, error) {
	if patch.IsEmpty() {
		return nil, domain.NewInvalidInputError("nothing to update")
	}
	current, err := s.questions.GetQuestion(ctx, ownerID, questionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load question", err)
	}
	if current == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}

	updated := patch.ApplyTo(*current)
	updated.Normalize()
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.now().UTC()

	if err := s.questions.UpdateQuestion(ctx, &updated); err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			return nil, err
		}
		return nil, domain.NewInternalError("failed to update question", err)
	}
	s.summaries.invalidate(ctx, ownerID)
	return &updated, nil
}

// Delete removes one question. Its answer history is kept.
func (s *bankService) Delete(ctx context.Context, ownerID, questionID string) error {
	deleted, err := s.questions.DeleteQuestion(ctx, ownerID, questionID)
	if err != nil {
		return domain.NewInternalError("failed to delete question", err)
	}
	if !deleted {
		return domain.NewQuestionNotFoundError(questionID)
	}
	s.summaries.invalidate(ctx, ownerID)
	return nil
}

// ClearQuestions removes every question of the owner and the per-question
// history that pointed at them. Answer totals are kept.
func (s *bankService) ClearQuestions(ctx context.Context, ownerID string) (int64, error) {
	var removed int64
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		n, err := s.questions.DeleteByOwner(txCtx, ownerID)
		if err != nil {
			return err
		}
		removed = n
		_, err = s.stats.DeleteHistoryByOwner(txCtx, ownerID)
		return err
	})
	if err != nil {
		return 0, domain.NewInternalError("failed to clear questions", err)
	}
	s.summaries.invalidate(ctx, ownerID)
	s.logger.Info("Question bank cleared", zap.String("owner_id", ownerID), zap.Int64("removed", removed))
	return removed, nil
}

// ClearKnowledge removes stored chunks only; questions keep a dangling source.
func (s *bankService) ClearKnowledge(ctx context.Context, ownerID string) (int64, error) {
	removed, err := s.knowledge.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, domain.NewInternalError("failed to clear knowledge", err)
	}
	s.summaries.invalidate(ctx, ownerID)
	s.logger.Info("Knowledge cleared", zap.String("owner_id", ownerID), zap.Int64("removed", removed))
	return removed, nil
}

func (s *bankService) Get(ctx context.Context, ownerID, questionID string) (*domain.QuestionView, error) {
	q, err := s.questions.GetQuestion(ctx, ownerID, questionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load question", err)
	}
	if q == nil {
		return nil, domain.NewQuestionNotFoundError(questionID)
	}

	view := &domain.QuestionView{Question: *q}
	switch {
	case q.IsCustom || q.SourceChunkID == "":
		view.SourceLabel = "Custom question"
	default:
		chunk, err := s.knowledge.GetChunk(ctx, ownerID, q.SourceChunkID)
		if err != nil {
			return nil, domain.NewInternalError("failed to load question source", err)
		}
		if chunk == nil {
			view.SourceLabel = "Source unavailable"
		} else {
			view.SourceLabel = chunk.Label()
			view.SourceAvailable = true
		}
	}
	return view, nil
}

func (s *bankService) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Question, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	questions, err := s.questions.ListQuestions(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, domain.NewInternalError("failed to list questions", err)
	}
	return questions, nil
}

func (s *bankService) Stats(ctx context.Context, ownerID string) (*domain.BankSummary, error) {
	if summary, ok := s.summaries.get(ctx, ownerID); ok {
		return summary, nil
	}

	total, custom, err := s.questions.CountQuestions(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to count questions", err)
	}
	sources, err := s.knowledge.CountSources(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to count sources", err)
	}
	record, err := s.stats.GetRecord(ctx, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load stats", err)
	}

	summary := &domain.BankSummary{
		QuestionCount: total,
		CustomCount:   custom,
		SourceCount:   sources,
		TotalAnswered: record.TotalAnswered,
		TotalCorrect:  record.TotalCorrect,
		Accuracy:      domain.Accuracy(record.TotalCorrect, record.TotalAnswered),
	}
	s.summaries.set(ctx, ownerID, summary)
	return summary, nil
}
