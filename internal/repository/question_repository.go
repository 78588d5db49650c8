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

const questionColumns = `id, owner_id, source_chunk_id, question_text, options, correct_index,
	explanation, is_custom, created_at, updated_at`

// SQLXQuestionRepository implements domain.QuestionRepository
type SQLXQuestionRepository struct {
	db *sqlx.DB
}

func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &SQLXQuestionRepository{db: db}
}

// SaveQuestions inserts all questions, assigning ids and timestamps that are
// still unset. Callers wrap it in a transaction when the batch must commit
// together.
func (r *SQLXQuestionRepository) SaveQuestions(ctx context.Context, questions []*domain.Question) error {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO questions (` + questionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	now := time.Now().UTC()
	for _, q := range questions {
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = now
		}
		if q.UpdatedAt.IsZero() {
			q.UpdatedAt = q.CreatedAt
		}
		m := toModelQuestion(q)
		_, err := exec.ExecContext(ctx, query,
			m.ID, m.OwnerID, m.SourceChunkID, m.QuestionText, m.Options, m.CorrectIndex,
			m.Explanation, m.IsCustom, m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save question: %w", err)
		}
	}
	return nil
}

func (r *SQLXQuestionRepository) GetQuestion(ctx context.Context, ownerID, questionID string) (*domain.Question, error) {
	var m models.Question
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE owner_id = ? AND id = ?`)
	if err := exec.GetContext(ctx, &m, query, ownerID, questionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question %s: %w", questionID, err)
	}
	return toDomainQuestion(&m), nil
}

func (r *SQLXQuestionRepository) ListQuestionIDs(ctx context.Context, ownerID string) ([]string, error) {
	var ids []string
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT id FROM questions WHERE owner_id = ? ORDER BY id`)
	if err := exec.SelectContext(ctx, &ids, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list question ids: %w", err)
	}
	return ids, nil
}

// GetQuestionsByIDs returns the owner's questions in the order of ids.
// Unknown ids are skipped.
func (r *SQLXQuestionRepository) GetQuestionsByIDs(ctx context.Context, ownerID string, ids []string) ([]*domain.Question, error) {
	if len(ids) == 0 {
		return []*domain.Question{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+questionColumns+` FROM questions WHERE owner_id = ? AND id IN (?)`, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build question lookup: %w", err)
	}
	exec := GetExecutor(ctx, r.db)

	var rows []models.Question
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}

	byID := make(map[string]*domain.Question, len(rows))
	for i := range rows {
		byID[rows[i].ID] = toDomainQuestion(&rows[i])
	}
	out := make([]*domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *SQLXQuestionRepository) ListQuestions(ctx context.Context, ownerID string, limit, offset int) ([]*domain.Question, error) {
	var rows []models.Question
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := exec.SelectContext(ctx, &rows, query, ownerID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	out := make([]*domain.Question, len(rows))
	for i := range rows {
		out[i] = toDomainQuestion(&rows[i])
	}
	return out, nil
}

// UpdateQuestion overwrites the editable fields of an existing question.
func (r *SQLXQuestionRepository) UpdateQuestion(ctx context.Context, q *domain.Question) error {
	q.UpdatedAt = time.Now().UTC()
	m := toModelQuestion(q)

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`UPDATE questions
		SET question_text = ?, options = ?, correct_index = ?, explanation = ?, updated_at = ?
		WHERE owner_id = ? AND id = ?`)
	res, err := exec.ExecContext(ctx, query,
		m.QuestionText, m.Options, m.CorrectIndex, m.Explanation, m.UpdatedAt, m.OwnerID, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update question %s: %w", q.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return domain.NewQuestionNotFoundError(q.ID)
	}
	return nil
}

func (r *SQLXQuestionRepository) DeleteQuestion(ctx context.Context, ownerID, questionID string) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM questions WHERE owner_id = ? AND id = ?`), ownerID, questionID)
	if err != nil {
		return false, fmt.Errorf("failed to delete question %s: %w", questionID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

func (r *SQLXQuestionRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM questions WHERE owner_id = ?`), ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear questions: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLXQuestionRepository) CountQuestions(ctx context.Context, ownerID string) (int, int, error) {
	var counts struct {
		Total  int           `db:"total"`
		Custom sql.NullInt64 `db:"custom"`
	}
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT COUNT(*) AS total,
		SUM(CASE WHEN is_custom THEN 1 ELSE 0 END) AS custom
		FROM questions WHERE owner_id = ?`)
	if err := exec.GetContext(ctx, &counts, query, ownerID); err != nil {
		return 0, 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return counts.Total, int(counts.Custom.Int64), nil
}

func toModelQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:            q.ID,
		OwnerID:       q.OwnerID,
		SourceChunkID: util.StringToNullString(q.SourceChunkID),
		QuestionText:  q.Text,
		Options:       models.StringSlice(q.Options),
		CorrectIndex:  q.CorrectIndex,
		Explanation:   q.Explanation,
		IsCustom:      q.IsCustom,
		CreatedAt:     q.CreatedAt.UTC(),
		UpdatedAt:     q.UpdatedAt.UTC(),
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		SourceChunkID: m.SourceChunkID.String,
		Text:          m.QuestionText,
		Options:       []string(m.Options),
		CorrectIndex:  m.CorrectIndex,
		Explanation:   m.Explanation,
		IsCustom:      m.IsCustom,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
