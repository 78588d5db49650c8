package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mcq-bot/internal/domain"
	"mcq-bot/internal/repository/models"
	"mcq-bot/internal/util"

	"github.com/jmoiron/sqlx"
)

const settingsColumns = `owner_id, daily_quiz_time, timezone, frequency, min_questions, max_questions,
	daily_question_count, last_fired_at, updated_at`

// SQLXSettingsRepository implements domain.SettingsRepository
type SQLXSettingsRepository struct {
	db *sqlx.DB
}

func NewSQLXSettingsRepository(db *sqlx.DB) domain.SettingsRepository {
	return &SQLXSettingsRepository{db: db}
}

func (r *SQLXSettingsRepository) GetSettings(ctx context.Context, ownerID string) (*domain.UserSettings, error) {
	var m models.UserSettings
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + settingsColumns + ` FROM user_settings WHERE owner_id = ?`)
	if err := exec.GetContext(ctx, &m, query, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings for %s: %w", ownerID, err)
	}
	return toDomainSettings(&m)
}

// UpsertSettings stores every user-editable field. last_fired_at belongs to
// the scheduler and is never overwritten here.
func (r *SQLXSettingsRepository) UpsertSettings(ctx context.Context, s *domain.UserSettings) error {
	s.UpdatedAt = time.Now().UTC()
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO user_settings (` + settingsColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			daily_quiz_time = excluded.daily_quiz_time,
			timezone = excluded.timezone,
			frequency = excluded.frequency,
			min_questions = excluded.min_questions,
			max_questions = excluded.max_questions,
			daily_question_count = excluded.daily_question_count,
			updated_at = excluded.updated_at`)
	_, err := exec.ExecContext(ctx, query,
		s.OwnerID, s.DailyQuizTime, s.Timezone, s.Frequency.String(), s.MinQuestions, s.MaxQuestions,
		s.DailyQuestionCount, util.TimePtrToNullTime(utcPtr(s.LastFiredAt)), s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings for %s: %w", s.OwnerID, err)
	}
	return nil
}

func (r *SQLXSettingsRepository) ListSettings(ctx context.Context) ([]*domain.UserSettings, error) {
	var rows []models.UserSettings
	exec := GetExecutor(ctx, r.db)
	if err := exec.SelectContext(ctx, &rows, `SELECT `+settingsColumns+` FROM user_settings ORDER BY owner_id`); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	out := make([]*domain.UserSettings, 0, len(rows))
	for i := range rows {
		s, err := toDomainSettings(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ClaimSlot is a compare-and-set on last_fired_at; two schedulers racing for
// the same slot cannot both win.
func (r *SQLXSettingsRepository) ClaimSlot(ctx context.Context, ownerID string, slot time.Time) (bool, error) {
	slot = slot.UTC()
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`UPDATE user_settings SET last_fired_at = ?
		WHERE owner_id = ? AND (last_fired_at IS NULL OR last_fired_at < ?)`)
	res, err := exec.ExecContext(ctx, query, slot, ownerID, slot)
	if err != nil {
		return false, fmt.Errorf("failed to claim schedule slot for %s: %w", ownerID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	return affected == 1, nil
}

func toDomainSettings(m *models.UserSettings) (*domain.UserSettings, error) {
	freq, err := domain.ParseFrequency(m.Frequency)
	if err != nil {
		return nil, fmt.Errorf("stored settings for %s: %w", m.OwnerID, err)
	}
	return &domain.UserSettings{
		OwnerID:            m.OwnerID,
		DailyQuizTime:      m.DailyQuizTime,
		Timezone:           m.Timezone,
		Frequency:          freq,
		MinQuestions:       m.MinQuestions,
		MaxQuestions:       m.MaxQuestions,
		DailyQuestionCount: m.DailyQuestionCount,
		LastFiredAt:        util.NullTimeToPtr(m.LastFiredAt),
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
