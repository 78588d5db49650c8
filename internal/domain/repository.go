package domain

import (
	"context"
	"time"
)

// TransactionManager runs fn inside one database transaction carried by ctx
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// KnowledgeRepository persists uploaded document chunks
type KnowledgeRepository interface {
	SaveChunk(ctx context.Context, chunk *KnowledgeChunk) error
	// GetChunk returns nil, nil when the chunk does not exist
	GetChunk(ctx context.Context, ownerID, chunkID string) (*KnowledgeChunk, error)
	CountSources(ctx context.Context, ownerID string) (int, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// QuestionRepository persists validated questions
type QuestionRepository interface {
	SaveQuestions(ctx context.Context, questions []*Question) error
	// GetQuestion returns nil, nil when the question does not exist for the owner
	GetQuestion(ctx context.Context, ownerID, questionID string) (*Question, error)
	ListQuestionIDs(ctx context.Context, ownerID string) ([]string, error)
	GetQuestionsByIDs(ctx context.Context, ownerID string, ids []string) ([]*Question, error)
	ListQuestions(ctx context.Context, ownerID string, limit, offset int) ([]*Question, error)
	UpdateQuestion(ctx context.Context, question *Question) error
	DeleteQuestion(ctx context.Context, ownerID, questionID string) (bool, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
	CountQuestions(ctx context.Context, ownerID string) (total int, custom int, err error)
}

// StatsRepository persists StatsRecord totals and per-question history
type StatsRepository interface {
	IncrementTotals(ctx context.Context, ownerID string, correct bool) error
	UpsertHistory(ctx context.Context, ownerID, questionID string, correct bool, seenAt time.Time) error
	GetRecord(ctx context.Context, ownerID string) (*StatsRecord, error)
	DeleteHistoryByOwner(ctx context.Context, ownerID string) (int64, error)
}

// SettingsRepository persists UserSettings and the scheduler's last firing
type SettingsRepository interface {
	// GetSettings returns nil, nil when the owner has no stored settings
	GetSettings(ctx context.Context, ownerID string) (*UserSettings, error)
	UpsertSettings(ctx context.Context, settings *UserSettings) error
	ListSettings(ctx context.Context) ([]*UserSettings, error)
	// ClaimSlot records slot as last_fired_at unless it was already recorded;
	// it reports whether this call made the claim
	ClaimSlot(ctx context.Context, ownerID string, slot time.Time) (bool, error)
}
