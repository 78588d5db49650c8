package service

import (
	"context"
	"time"

	"mcq-bot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockSessionManager ---
type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) Start(ctx context.Context, ownerID string, count int) (*QuizStart, error) {
	args := m.Called(ctx, ownerID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QuizStart), args.Error(1)
}

func (m *MockSessionManager) Current(ctx context.Context, ownerID string) (*domain.Question, domain.QuizProgress, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Get(1).(domain.QuizProgress), args.Error(2)
	}
	return args.Get(0).(*domain.Question), args.Get(1).(domain.QuizProgress), args.Error(2)
}

func (m *MockSessionManager) Submit(ctx context.Context, ownerID string, choice int) (*AnswerResult, error) {
	args := m.Called(ctx, ownerID, choice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AnswerResult), args.Error(1)
}

func (m *MockSessionManager) Cancel(ctx context.Context, ownerID string) (domain.QuizProgress, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(domain.QuizProgress), args.Error(1)
}

func (m *MockSessionManager) IsActive(ownerID string) bool {
	args := m.Called(ownerID)
	return args.Bool(0)
}

// --- MockQuizNotifier ---
type MockQuizNotifier struct {
	mock.Mock
}

func (m *MockQuizNotifier) NotifyQuizStarted(ctx context.Context, ownerID string, start *QuizStart) error {
	args := m.Called(ctx, ownerID, start)
	return args.Error(0)
}

// --- MockStatsTracker ---
type MockStatsTracker struct {
	mock.Mock
}

func (m *MockStatsTracker) Update(ctx context.Context, ownerID, questionID string, wasCorrect bool) error {
	args := m.Called(ctx, ownerID, questionID, wasCorrect)
	return args.Error(0)
}

func (m *MockStatsTracker) Summary(ctx context.Context, ownerID string) (*domain.StatsSummary, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsSummary), args.Error(1)
}

// stubGenerator answers every segment through fn.
type stubGenerator struct {
	fn func(ctx context.Context, segment string, minQ, maxQ int) (string, error)
}

func (g *stubGenerator) Generate(ctx context.Context, segment string, minQ, maxQ int) (string, error) {
	return g.fn(ctx, segment, minQ, maxQ)
}
