package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mcq-bot/internal/domain"
	"mcq-bot/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// SQLXStatsRepository implements domain.StatsRepository
type SQLXStatsRepository struct {
	db *sqlx.DB
}

func NewSQLXStatsRepository(db *sqlx.DB) domain.StatsRepository {
	return &SQLXStatsRepository{db: db}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLXStatsRepository) IncrementTotals(ctx context.Context, ownerID string, correct bool) error {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO user_stats (owner_id, total_answered, total_correct, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			total_answered = user_stats.total_answered + 1,
			total_correct = user_stats.total_correct + excluded.total_correct,
			updated_at = excluded.updated_at`)
	if _, err := exec.ExecContext(ctx, query, ownerID, boolToInt(correct), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update stats totals for %s: %w", ownerID, err)
	}
	return nil
}

func (r *SQLXStatsRepository) UpsertHistory(ctx context.Context, ownerID, questionID string, correct bool, seenAt time.Time) error {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO question_history (owner_id, question_id, attempts, correct_attempts, last_seen_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (owner_id, question_id) DO UPDATE SET
			attempts = question_history.attempts + 1,
			correct_attempts = question_history.correct_attempts + excluded.correct_attempts,
			last_seen_at = excluded.last_seen_at`)
	if _, err := exec.ExecContext(ctx, query, ownerID, questionID, boolToInt(correct), seenAt.UTC()); err != nil {
		return fmt.Errorf("failed to update history of question %s: %w", questionID, err)
	}
	return nil
}

// GetRecord returns an empty record for owners who never answered.
func (r *SQLXStatsRepository) GetRecord(ctx context.Context, ownerID string) (*domain.StatsRecord, error) {
	exec := GetExecutor(ctx, r.db)
	record := &domain.StatsRecord{OwnerID: ownerID, History: map[string]domain.QuestionHistory{}}

	var totals models.UserStats
	err := exec.GetContext(ctx, &totals, exec.Rebind(`SELECT owner_id, total_answered, total_correct, updated_at
		FROM user_stats WHERE owner_id = ?`), ownerID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to get stats for %s: %w", ownerID, err)
	default:
		record.TotalAnswered = totals.TotalAnswered
		record.TotalCorrect = totals.TotalCorrect
	}

	var history []models.QuestionHistory
	if err := exec.SelectContext(ctx, &history, exec.Rebind(`SELECT owner_id, question_id, attempts, correct_attempts, last_seen_at
		FROM question_history WHERE owner_id = ?`), ownerID); err != nil {
		return nil, fmt.Errorf("failed to get question history for %s: %w", ownerID, err)
	}
	for _, h := range history {
		record.History[h.QuestionID] = domain.QuestionHistory{
			QuestionID:      h.QuestionID,
			Attempts:        h.Attempts,
			CorrectAttempts: h.CorrectAttempts,
			LastSeenAt:      h.LastSeenAt,
		}
	}
	return record, nil
}

func (r *SQLXStatsRepository) DeleteHistoryByOwner(ctx context.Context, ownerID string) (int64, error) {
	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM question_history WHERE owner_id = ?`), ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear question history: %w", err)
	}
	return res.RowsAffected()
}
