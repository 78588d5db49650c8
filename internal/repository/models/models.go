package models

import (
	"database/sql"
	"time"
)

// KnowledgeChunk maps the knowledge_chunks table
type KnowledgeChunk struct {
	ID               string    `db:"id"`
	OwnerID          string    `db:"owner_id"`
	SourceDocumentID string    `db:"source_document_id"`
	SourceName       string    `db:"source_name"`
	ChunkIndex       int       `db:"chunk_index"`
	RawText          string    `db:"raw_text"`
	CreatedAt        time.Time `db:"created_at"`
}

// Question maps the questions table
type Question struct {
	ID            string         `db:"id"`
	OwnerID       string         `db:"owner_id"`
	SourceChunkID sql.NullString `db:"source_chunk_id"`
	QuestionText  string         `db:"question_text"`
	Options       StringSlice    `db:"options"`
	CorrectIndex  int            `db:"correct_index"`
	Explanation   string         `db:"explanation"`
	IsCustom      bool           `db:"is_custom"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// UserSettings maps the user_settings table
type UserSettings struct {
	OwnerID            string       `db:"owner_id"`
	DailyQuizTime      string       `db:"daily_quiz_time"`
	Timezone           string       `db:"timezone"`
	Frequency          string       `db:"frequency"`
	MinQuestions       int          `db:"min_questions"`
	MaxQuestions       int          `db:"max_questions"`
	DailyQuestionCount int          `db:"daily_question_count"`
	LastFiredAt        sql.NullTime `db:"last_fired_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
}

// UserStats maps the user_stats table
type UserStats struct {
	OwnerID       string    `db:"owner_id"`
	TotalAnswered int       `db:"total_answered"`
	TotalCorrect  int       `db:"total_correct"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// QuestionHistory maps the question_history table
type QuestionHistory struct {
	OwnerID         string    `db:"owner_id"`
	QuestionID      string    `db:"question_id"`
	Attempts        int       `db:"attempts"`
	CorrectAttempts int       `db:"correct_attempts"`
	LastSeenAt      time.Time `db:"last_seen_at"`
}
