package service

import (
	"context"
	"fmt"
	"testing"
	_ "time/tzdata"

	"mcq-bot/internal/config"
	"mcq-bot/internal/database"
	"mcq-bot/internal/domain"
	"mcq-bot/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// testStore is a migrated in-memory sqlite database with every repository.
type testStore struct {
	db        *sqlx.DB
	questions domain.QuestionRepository
	knowledge domain.KnowledgeRepository
	stats     domain.StatsRepository
	settings  domain.SettingsRepository
	tx        domain.TransactionManager
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db.DB, "sqlite", false, zap.NewNop()))

	return &testStore{
		db:        db,
		questions: repository.NewSQLXQuestionRepository(db),
		knowledge: repository.NewSQLXKnowledgeRepository(db),
		stats:     repository.NewSQLXStatsRepository(db),
		settings:  repository.NewSQLXSettingsRepository(db),
		tx:        repository.NewTransactionManagerAdapter(db),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Generation: config.GenerationConfig{
			MinQuestions:         2,
			MaxQuestions:         4,
			MaxQuestionsCeiling:  10,
			DefaultDailyQuestion: 2,
		},
		Scheduler: config.SchedulerConfig{
			DefaultQuizTime:  "09:00",
			DefaultFrequency: "daily",
			DefaultTimezone:  "UTC",
		},
	}
}

func (s *testStore) bank(cache domain.Cache) BankService {
	return NewBankService(s.questions, s.knowledge, s.stats, s.tx, cache, 0, zap.NewNop())
}

func (s *testStore) tracker(cache domain.Cache) StatsTracker {
	return NewStatsTracker(s.stats, s.tx, cache, 0, zap.NewNop())
}

func (s *testStore) settingsService() SettingsService {
	return NewSettingsService(s.settings, testConfig(), zap.NewNop())
}

func testQuestion(owner, text string) *domain.Question {
	return &domain.Question{
		OwnerID:      owner,
		Text:         text,
		Options:      []string{"Nucleus", "Mitochondria", "Ribosome", "Golgi apparatus"},
		CorrectIndex: 1,
		Explanation:  "Mitochondria produce most of the cell's ATP.",
	}
}

// seedBank stores n questions for owner under one chunk and returns them.
func seedBank(t *testing.T, bank BankService, owner string, n int) []*domain.Question {
	t.Helper()
	chunk := &domain.KnowledgeChunk{
		ID:               fmt.Sprintf("chunk-%s", owner),
		OwnerID:          owner,
		SourceDocumentID: "doc-1",
		SourceName:       "biology.pdf",
		ChunkIndex:       1,
		RawText:          "Cells are the basic unit of life.",
	}
	questions := make([]*domain.Question, n)
	for i := range questions {
		questions[i] = testQuestion(owner, fmt.Sprintf("Question number %d?", i+1))
	}
	require.NoError(t, bank.Add(context.Background(), chunk, questions))
	return questions
}
