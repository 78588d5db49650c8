package service

import (
	"context"
	"sync"
	"time"

	"mcq-bot/internal/domain"

	"go.uber.org/zap"
)

// AnswerResult is the outcome of one submitted answer.
type AnswerResult struct {
	Record       domain.AnswerRecord
	Question     *domain.Question
	NextQuestion *domain.Question
	Summary      *domain.QuizSummary
	Progress     domain.QuizProgress
}

// QuizStart describes a freshly started quiz.
type QuizStart struct {
	FirstQuestion *domain.Question
	Total         int
	StartedAt     time.Time
}

// SessionManager keeps at most one active quiz per owner.
type SessionManager interface {
	// Start samples questions and opens a session. count <= 0 uses the
	// owner's daily question count.
	Start(ctx context.Context, ownerID string, count int) (*QuizStart, error)
	Current(ctx context.Context, ownerID string) (*domain.Question, domain.QuizProgress, error)
	Submit(ctx context.Context, ownerID string, choice int) (*AnswerResult, error)
	Cancel(ctx context.Context, ownerID string) (domain.QuizProgress, error)
	IsActive(ownerID string) bool
}

// ownerSession pairs a session with the lock that serializes its use.
type ownerSession struct {
	mu      sync.Mutex
	session *domain.QuizSession
}

type sessionManager struct {
	mu       sync.Mutex
	sessions map[string]*ownerSession

	bank     BankService
	stats    StatsTracker
	settings SettingsService
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionManager(bank BankService, stats StatsTracker, settings SettingsService, logger *zap.Logger) SessionManager {
	return &sessionManager{
		sessions: make(map[string]*ownerSession),
		bank:     bank,
		stats:    stats,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

func (m *sessionManager) IsActive(ownerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[ownerID]
	return ok
}

func (m *sessionManager) Start(ctx context.Context, ownerID string, count int) (*QuizStart, error) {
	if count <= 0 {
		settings, err := m.settings.Get(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		count = settings.DailyQuestionCount
	}

	// reserve the slot first so a concurrent start cannot overwrite it
	entry := &ownerSession{session: domain.NewQuizSession(ownerID)}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	m.mu.Lock()
	if _, exists := m.sessions[ownerID]; exists {
		m.mu.Unlock()
		return nil, domain.NewInvalidStateError("a quiz is already in progress")
	}
	m.sessions[ownerID] = entry
	m.mu.Unlock()

	questions, err := m.bank.Sample(ctx, ownerID, count)
	if err == nil {
		err = entry.session.Start(questions, m.now().UTC())
	}
	if err != nil {
		m.remove(ownerID, entry)
		return nil, err
	}

	m.logger.Info("Quiz started",
		zap.String("owner_id", ownerID),
		zap.Int("questions", len(questions)))
	first, _ := entry.session.Current()
	return &QuizStart{FirstQuestion: first, Total: len(questions), StartedAt: entry.session.StartedAt}, nil
}

func (m *sessionManager) Current(_ context.Context, ownerID string) (*domain.Question, domain.QuizProgress, error) {
	entry, err := m.lookup(ownerID)
	if err != nil {
		return nil, domain.QuizProgress{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	q, err := entry.session.Current()
	if err != nil {
		return nil, domain.QuizProgress{}, err
	}
	return q, entry.session.Progress(), nil
}

func (m *sessionManager) Submit(ctx context.Context, ownerID string, choice int) (*AnswerResult, error) {
	entry, err := m.lookup(ownerID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	question, err := entry.session.Current()
	if err != nil {
		return nil, err
	}
	rec, summary, err := entry.session.Submit(choice, m.now().UTC(), func(r domain.AnswerRecord) error {
		return m.stats.Update(ctx, ownerID, r.QuestionID, r.Correct)
	})
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{Record: rec, Question: question, Summary: summary, Progress: entry.session.Progress()}
	if summary != nil {
		m.remove(ownerID, entry)
		m.logger.Info("Quiz completed",
			zap.String("owner_id", ownerID),
			zap.Int("score", summary.Score),
			zap.Int("total", summary.Total))
		return result, nil
	}
	result.NextQuestion, _ = entry.session.Current()
	return result, nil
}

func (m *sessionManager) Cancel(_ context.Context, ownerID string) (domain.QuizProgress, error) {
	entry, err := m.lookup(ownerID)
	if err != nil {
		return domain.QuizProgress{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	progress, err := entry.session.Cancel()
	if err != nil {
		return domain.QuizProgress{}, err
	}
	m.remove(ownerID, entry)
	m.logger.Info("Quiz cancelled",
		zap.String("owner_id", ownerID),
		zap.Int("answered", progress.Answered),
		zap.Int("remaining", progress.Remaining))
	return progress, nil
}

func (m *sessionManager) lookup(ownerID string) (*ownerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[ownerID]
	if !ok {
		return nil, domain.NewInvalidStateError("no quiz in progress")
	}
	return entry, nil
}

// remove drops entry only if it is still the registered session.
func (m *sessionManager) remove(ownerID string, entry *ownerSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[ownerID] == entry {
		delete(m.sessions, ownerID)
	}
}
