package dto

import (
	"time"

	"mcq-bot/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims are the claims of a bearer token. Subject holds the owner id.
type AuthClaims struct {
	OwnerID string `json:"owner_id,omitempty"`
	jwt.RegisteredClaims
}

type SettingsResponse struct {
	DailyQuizTime      string     `json:"daily_quiz_time"`
	Timezone           string     `json:"timezone"`
	Frequency          string     `json:"frequency"`
	MinQuestions       int        `json:"min_questions"`
	MaxQuestions       int        `json:"max_questions"`
	DailyQuestionCount int        `json:"daily_questions"`
	LastFiredAt        *time.Time `json:"last_fired_at,omitempty"`
}

// SettingsUpdateRequest changes only the fields that are present.
type SettingsUpdateRequest struct {
	DailyQuizTime      *string `json:"daily_quiz_time,omitempty"`
	Timezone           *string `json:"timezone,omitempty"`
	Frequency          *string `json:"frequency,omitempty"`
	MinQuestions       *int    `json:"min_questions,omitempty"`
	MaxQuestions       *int    `json:"max_questions,omitempty"`
	DailyQuestionCount *int    `json:"daily_questions,omitempty"`
}

type StatsResponse struct {
	TotalAnswered int     `json:"total_answered"`
	TotalCorrect  int     `json:"total_correct"`
	Accuracy      float64 `json:"accuracy"`
	QuestionCount int     `json:"question_count"`
	SourceCount   int     `json:"source_count"`
}

type HelpEntry struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type HelpResponse struct {
	Commands []HelpEntry `json:"commands"`
}

func NewSettingsResponse(s *domain.UserSettings) *SettingsResponse {
	return &SettingsResponse{
		DailyQuizTime:      s.DailyQuizTime,
		Timezone:           s.Timezone,
		Frequency:          s.Frequency.String(),
		MinQuestions:       s.MinQuestions,
		MaxQuestions:       s.MaxQuestions,
		DailyQuestionCount: s.DailyQuestionCount,
		LastFiredAt:        s.LastFiredAt,
	}
}
