package dto

import (
	"time"

	"mcq-bot/internal/domain"
)

// QuestionResponse is a question as shown to the quiz taker; the answer is hidden.
type QuestionResponse struct {
	ID       string   `json:"id"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Position int      `json:"position"`
	Total    int      `json:"total"`
}

// StartQuizRequest starts a quiz; count 0 uses the daily question count.
type StartQuizRequest struct {
	Count int `json:"count"`
}

type StartQuizResponse struct {
	Total     int               `json:"total"`
	StartedAt time.Time         `json:"started_at"`
	Question  *QuestionResponse `json:"question"`
}

// AnswerRequest carries a 0-based choice, or a letter A-D.
type AnswerRequest struct {
	Choice *int   `json:"choice,omitempty"`
	Letter string `json:"letter,omitempty"`
}

type AnswerResponse struct {
	Correct       bool                `json:"correct"`
	Choice        int                 `json:"choice"`
	CorrectIndex  int                 `json:"correct_index"`
	CorrectAnswer string              `json:"correct_answer"`
	Explanation   string              `json:"explanation"`
	NextQuestion  *QuestionResponse   `json:"next_question,omitempty"`
	Progress      domain.QuizProgress `json:"progress"`
	Summary       *domain.QuizSummary `json:"summary,omitempty"`
}

type CurrentQuestionResponse struct {
	Question *QuestionResponse   `json:"question"`
	Progress domain.QuizProgress `json:"progress"`
}

type CancelQuizResponse struct {
	Progress domain.QuizProgress `json:"progress"`
}

func NewQuestionResponse(q *domain.Question, position, total int) *QuestionResponse {
	if q == nil {
		return nil
	}
	return &QuestionResponse{
		ID:       q.ID,
		Text:     q.Text,
		Options:  append([]string(nil), q.Options...),
		Position: position,
		Total:    total,
	}
}
