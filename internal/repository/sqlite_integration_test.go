package repository

import (
	"context"
	"testing"
	"time"

	"mcq-bot/internal/database"
	"mcq-bot/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// setupSQLiteDB returns a migrated in-memory sqlite database.
func setupSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(db.DB, "sqlite", false, zap.NewNop()))
	return db
}

func newQuestion(owner, text string, custom bool) *domain.Question {
	return &domain.Question{
		OwnerID:      owner,
		Text:         text,
		Options:      []string{"one", "two", "three", "four"},
		CorrectIndex: 1,
		Explanation:  "because",
		IsCustom:     custom,
	}
}

func TestSQLite_QuestionLifecycle(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	knowledge := NewSQLXKnowledgeRepository(db)
	questions := NewSQLXQuestionRepository(db)
	tx := NewTransactionManagerAdapter(db)

	chunk := &domain.KnowledgeChunk{
		OwnerID:          "alice",
		SourceDocumentID: "doc-1",
		SourceName:       "notes.txt",
		ChunkIndex:       0,
		RawText:          "some text",
	}
	qs := []*domain.Question{newQuestion("alice", "Q1", false), newQuestion("alice", "Q2", false)}

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := knowledge.SaveChunk(ctx, chunk); err != nil {
			return err
		}
		for _, q := range qs {
			q.SourceChunkID = chunk.ID
		}
		return questions.SaveQuestions(ctx, qs)
	})
	require.NoError(t, err)
	require.NoError(t, questions.SaveQuestions(ctx, []*domain.Question{newQuestion("alice", "Custom", true)}))
	require.NoError(t, questions.SaveQuestions(ctx, []*domain.Question{newQuestion("bob", "Bob's", false)}))

	total, custom, err := questions.CountQuestions(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, custom)

	got, err := questions.GetQuestion(ctx, "alice", qs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Q1", got.Text)
	assert.Equal(t, []string{"one", "two", "three", "four"}, got.Options)
	assert.Equal(t, chunk.ID, got.SourceChunkID)

	foreign, err := questions.GetQuestion(ctx, "bob", qs[0].ID)
	require.NoError(t, err)
	assert.Nil(t, foreign, "questions are isolated per owner")

	ids, err := questions.ListQuestionIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	byIDs, err := questions.GetQuestionsByIDs(ctx, "alice", []string{qs[1].ID, "missing", qs[0].ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, qs[1].ID, byIDs[0].ID)
	assert.Equal(t, qs[0].ID, byIDs[1].ID)

	page, err := questions.ListQuestions(ctx, "alice", 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	got.Text = "Q1 edited"
	require.NoError(t, questions.UpdateQuestion(ctx, got))
	edited, err := questions.GetQuestion(ctx, "alice", got.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q1 edited", edited.Text)

	got.OwnerID = "bob"
	err = questions.UpdateQuestion(ctx, got)
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	// clearing knowledge keeps the questions
	sources, err := knowledge.CountSources(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, sources)
	removed, err := knowledge.DeleteByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	total, _, err = questions.CountQuestions(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	missing, err := knowledge.GetChunk(ctx, "alice", chunk.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := questions.DeleteQuestion(ctx, "alice", qs[1].ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = questions.DeleteQuestion(ctx, "alice", qs[1].ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	cleared, err := questions.DeleteByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cleared)
	total, _, err = questions.CountQuestions(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSQLite_TransactionRollback(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	questions := NewSQLXQuestionRepository(db)
	tx := NewTransactionManagerAdapter(db)

	bad := newQuestion("alice", "bad", false)
	bad.CorrectIndex = 9 // violates the CHECK constraint

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		return questions.SaveQuestions(ctx, []*domain.Question{newQuestion("alice", "ok", false), bad})
	})
	require.Error(t, err)

	total, _, err := questions.CountQuestions(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, total, "a failed chunk commits nothing")
}

func TestSQLite_StatsAndSettings(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	stats := NewSQLXStatsRepository(db)
	settings := NewSQLXSettingsRepository(db)

	empty, err := stats.GetRecord(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalAnswered)
	assert.Empty(t, empty.History)

	seen := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	require.NoError(t, stats.IncrementTotals(ctx, "alice", true))
	require.NoError(t, stats.UpsertHistory(ctx, "alice", "q1", true, seen))
	require.NoError(t, stats.IncrementTotals(ctx, "alice", false))
	require.NoError(t, stats.UpsertHistory(ctx, "alice", "q1", false, seen.Add(time.Minute)))

	record, err := stats.GetRecord(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, record.TotalAnswered)
	assert.Equal(t, 1, record.TotalCorrect)
	require.Contains(t, record.History, "q1")
	assert.Equal(t, 2, record.History["q1"].Attempts)
	assert.Equal(t, 1, record.History["q1"].CorrectAttempts)
	assert.True(t, record.History["q1"].LastSeenAt.Equal(seen.Add(time.Minute)))

	removed, err := stats.DeleteHistoryByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	record, err = stats.GetRecord(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, record.TotalAnswered, "totals survive history cleanup")
	assert.Empty(t, record.History)

	none, err := settings.GetSettings(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, none)

	s := &domain.UserSettings{
		OwnerID:            "alice",
		DailyQuizTime:      "09:00",
		Timezone:           "Asia/Seoul",
		Frequency:          domain.Frequency{Kind: domain.FrequencyWeekdays, Weekdays: []time.Weekday{time.Monday, time.Friday}},
		MinQuestions:       2,
		MaxQuestions:       4,
		DailyQuestionCount: 5,
	}
	require.NoError(t, settings.UpsertSettings(ctx, s))

	slot := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	claimed, err := settings.ClaimSlot(ctx, "alice", slot)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = settings.ClaimSlot(ctx, "alice", slot)
	require.NoError(t, err)
	assert.False(t, claimed, "the same slot is claimed once")

	s.MaxQuestions = 6
	require.NoError(t, settings.UpsertSettings(ctx, s))

	stored, err := settings.GetSettings(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 6, stored.MaxQuestions)
	assert.Equal(t, "weekdays:mon,fri", stored.Frequency.String())
	require.NotNil(t, stored.LastFiredAt, "upsert keeps last_fired_at")
	assert.True(t, stored.LastFiredAt.Equal(slot))

	claimed, err = settings.ClaimSlot(ctx, "alice", slot.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, claimed)

	all, err := settings.ListSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
