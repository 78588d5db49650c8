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

// SQLXKnowledgeRepository implements domain.KnowledgeRepository
type SQLXKnowledgeRepository struct {
	db *sqlx.DB
}

func NewSQLXKnowledgeRepository(db *sqlx.DB) domain.KnowledgeRepository {
	return &SQLXKnowledgeRepository{db: db}
}

func (r *SQLXKnowledgeRepository) SaveChunk(ctx context.Context, chunk *domain.KnowledgeChunk) error {
	if chunk.ID == "" {
		chunk.ID = util.NewULID()
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now()
	}
	chunk.CreatedAt = chunk.CreatedAt.UTC()

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO knowledge_chunks
		(id, owner_id, source_document_id, source_name, chunk_index, raw_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := exec.ExecContext(ctx, query,
		chunk.ID, chunk.OwnerID, chunk.SourceDocumentID, chunk.SourceName,
		chunk.ChunkIndex, chunk.RawText, chunk.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save knowledge chunk: %w", err)
	}
	return nil
}

func (r *SQLXKnowledgeRepository) GetChunk(ctx context.Context, ownerID, chunkID string) (*domain.KnowledgeChunk, error) {
	var m models.KnowledgeChunk
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT id, owner_id, source_document_id, source_name, chunk_index, raw_text, created_at
		FROM knowledge_chunks WHERE owner_id = ? AND id = ?`)
	if err := exec.GetContext(ctx, &m, query, ownerID, chunkID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get knowledge chunk %s: %w", chunkID, err)
	}
	return &domain.KnowledgeChunk{
		ID:               m.ID,
		OwnerID:          m.OwnerID,
		SourceDocumentID: m.SourceDocumentID,
		SourceName:       m.SourceName,
		ChunkIndex:       m.ChunkIndex,
		RawText:          m.RawText,
		CreatedAt:        m.CreatedAt,
	}, nil
}

func (r *SQLXKnowledgeRepository) CountSources(ctx context.Context, ownerID string) (int, error) {
	var count int
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT COUNT(DISTINCT source_document_id) FROM knowledge_chunks WHERE owner_id = ?`)
	if err := exec.GetContext(ctx, &count, query, ownerID); err != nil {
		return 0, fmt.Errorf("failed to count knowledge sources: %w", err)
	}
	return count, nil
}

func (r *SQLXKnowledgeRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM knowledge_chunks WHERE owner_id = ?`), ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear knowledge: %w", err)
	}
	return res.RowsAffected()
}
