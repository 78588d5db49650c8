package handler_test

import (
	"context"
	"errors"

	"mcq-bot/internal/domain"
	"mcq-bot/internal/dto"
	"mcq-bot/internal/service"
)

// --- Manual Mocks ---

type MockTokenService struct{}

func (m *MockTokenService) IssueToken(ctx context.Context, ownerID string) (string, error) {
	return "token-" + ownerID, nil
}

func (m *MockTokenService) ValidateToken(ctx context.Context, token string) (*dto.AuthClaims, error) {
	if token == "" || token == "bad" {
		return nil, errors.New("invalid token")
	}
	return &dto.AuthClaims{OwnerID: token}, nil
}

type MockSessionManager struct {
	StartFunc   func(ctx context.Context, ownerID string, count int) (*service.QuizStart, error)
	CurrentFunc func(ctx context.Context, ownerID string) (*domain.Question, domain.QuizProgress, error)
	SubmitFunc  func(ctx context.Context, ownerID string, choice int) (*service.AnswerResult, error)
	CancelFunc  func(ctx context.Context, ownerID string) (domain.QuizProgress, error)
}

func (m *MockSessionManager) Start(ctx context.Context, ownerID string, count int) (*service.QuizStart, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, ownerID, count)
	}
	panic("MockSessionManager.StartFunc not implemented")
}
func (m *MockSessionManager) Current(ctx context.Context, ownerID string) (*domain.Question, domain.QuizProgress, error) {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(ctx, ownerID)
	}
	panic("MockSessionManager.CurrentFunc not implemented")
}
func (m *MockSessionManager) Submit(ctx context.Context, ownerID string, choice int) (*service.AnswerResult, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, ownerID, choice)
	}
	panic("MockSessionManager.SubmitFunc not implemented")
}
func (m *MockSessionManager) Cancel(ctx context.Context, ownerID string) (domain.QuizProgress, error) {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, ownerID)
	}
	panic("MockSessionManager.CancelFunc not implemented")
}
func (m *MockSessionManager) IsActive(ownerID string) bool { return false }

type MockBankService struct {
	AddCustomFunc      func(ctx context.Context, ownerID string, draft domain.QuestionDraft) (*domain.Question, error)
	EditFunc           func(ctx context.Context, ownerID, questionID string, patch domain.QuestionPatch) (*domain.Question, error)
	DeleteFunc         func(ctx context.Context, ownerID, questionID string) error
	ClearQuestionsFunc func(ctx context.Context, ownerID string) (int64, error)
	ClearKnowledgeFunc func(ctx context.Context, ownerID string) (int64, error)
	GetFunc            func(ctx context.Context, ownerID, questionID string) (*domain.QuestionView, error)
	ListFunc           func(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Question, error)
	StatsFunc          func(ctx context.Context, ownerID string) (*domain.BankSummary, error)
}

func (m *MockBankService) Add(ctx context.Context, chunk *domain.KnowledgeChunk, questions []*domain.Question) error {
	panic("MockBankService.Add not implemented")
}
func (m *MockBankService) AddCustom(ctx context.Context, ownerID string, draft domain.QuestionDraft) (*domain.Question, error) {
	if m.AddCustomFunc != nil {
		return m.AddCustomFunc(ctx, ownerID, draft)
	}
	panic("MockBankService.AddCustomFunc not implemented")
}
func (m *MockBankService) Sample(ctx context.Context, ownerID string, count int) ([]*domain.Question, error) {
	panic("MockBankService.Sample not implemented")
}
func (m *MockBankService) Edit(ctx context.Context, ownerID, questionID string, patch domain.QuestionPatch) (*domain.Question, error) {
	if m.EditFunc != nil {
		return m.EditFunc(ctx, ownerID, questionID, patch)
	}
	panic("MockBankService.EditFunc not implemented")
}
func (m *MockBankService) Delete(ctx context.Context, ownerID, questionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, questionID)
	}
	panic("MockBankService.DeleteFunc not implemented")
}
func (m *MockBankService) ClearQuestions(ctx context.Context, ownerID string) (int64, error) {
	if m.ClearQuestionsFunc != nil {
		return m.ClearQuestionsFunc(ctx, ownerID)
	}
	panic("MockBankService.ClearQuestionsFunc not implemented")
}
func (m *MockBankService) ClearKnowledge(ctx context.Context, ownerID string) (int64, error) {
	if m.ClearKnowledgeFunc != nil {
		return m.ClearKnowledgeFunc(ctx, ownerID)
	}
	panic("MockBankService.ClearKnowledgeFunc not implemented")
}
func (m *MockBankService) Get(ctx context.Context, ownerID, questionID string) (*domain.QuestionView, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID, questionID)
	}
	panic("MockBankService.GetFunc not implemented")
}
func (m *MockBankService) List(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Question, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, limit, offset)
	}
	panic("MockBankService.ListFunc not implemented")
}
func (m *MockBankService) Stats(ctx context.Context, ownerID string) (*domain.BankSummary, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, ownerID)
	}
	panic("MockBankService.StatsFunc not implemented")
}

type MockIngestionService struct {
	UploadDocumentFunc func(ctx context.Context, ownerID, filename string, data []byte) (*service.UploadSummary, error)
	UploadTextFunc     func(ctx context.Context, ownerID, sourceName, text string) (*service.UploadSummary, error)
}

func (m *MockIngestionService) UploadDocument(ctx context.Context, ownerID, filename string, data []byte) (*service.UploadSummary, error) {
	if m.UploadDocumentFunc != nil {
		return m.UploadDocumentFunc(ctx, ownerID, filename, data)
	}
	panic("MockIngestionService.UploadDocumentFunc not implemented")
}
func (m *MockIngestionService) UploadText(ctx context.Context, ownerID, sourceName, text string) (*service.UploadSummary, error) {
	if m.UploadTextFunc != nil {
		return m.UploadTextFunc(ctx, ownerID, sourceName, text)
	}
	panic("MockIngestionService.UploadTextFunc not implemented")
}

type MockSettingsService struct {
	GetFunc    func(ctx context.Context, ownerID string) (*domain.UserSettings, error)
	UpdateFunc func(ctx context.Context, ownerID string, update service.SettingsUpdate) (*domain.UserSettings, error)
}

func (m *MockSettingsService) Get(ctx context.Context, ownerID string) (*domain.UserSettings, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, ownerID)
	}
	panic("MockSettingsService.GetFunc not implemented")
}
func (m *MockSettingsService) Update(ctx context.Context, ownerID string, update service.SettingsUpdate) (*domain.UserSettings, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ownerID, update)
	}
	panic("MockSettingsService.UpdateFunc not implemented")
}

type MockStatsTracker struct {
	SummaryFunc func(ctx context.Context, ownerID string) (*domain.StatsSummary, error)
}

func (m *MockStatsTracker) Update(ctx context.Context, ownerID, questionID string, wasCorrect bool) error {
	panic("MockStatsTracker.Update not implemented")
}
func (m *MockStatsTracker) Summary(ctx context.Context, ownerID string) (*domain.StatsSummary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, ownerID)
	}
	panic("MockStatsTracker.SummaryFunc not implemented")
}
