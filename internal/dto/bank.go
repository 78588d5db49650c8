package dto

import (
	"time"

	"mcq-bot/internal/domain"
)

// BankQuestionResponse is a stored question including its answer.
type BankQuestionResponse struct {
	ID              string    `json:"id"`
	Text            string    `json:"question"`
	Options         []string  `json:"options"`
	CorrectIndex    int       `json:"correct_index"`
	CorrectAnswer   string    `json:"correct_answer"`
	Explanation     string    `json:"explanation"`
	IsCustom        bool      `json:"is_custom"`
	SourceLabel     string    `json:"source,omitempty"`
	SourceAvailable bool      `json:"source_available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BankResponse struct {
	Summary   *domain.BankSummary     `json:"summary"`
	Questions []*BankQuestionResponse `json:"questions"`
	Limit     int                     `json:"limit"`
	Offset    int                     `json:"offset"`
}

// QuestionDraftRequest creates a custom question.
type QuestionDraftRequest struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// QuestionPatchRequest edits a question; omitted fields are unchanged.
type QuestionPatchRequest struct {
	Question     *string  `json:"question,omitempty"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
	Explanation  *string  `json:"explanation,omitempty"`
}

type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// TextUploadRequest ingests pasted text instead of a file.
type TextUploadRequest struct {
	SourceName string `json:"source_name"`
	Text       string `json:"text"`
}

func NewBankQuestionResponse(q *domain.Question) *BankQuestionResponse {
	return &BankQuestionResponse{
		ID:            q.ID,
		Text:          q.Text,
		Options:       append([]string(nil), q.Options...),
		CorrectIndex:  q.CorrectIndex,
		CorrectAnswer: q.CorrectOption(),
		Explanation:   q.Explanation,
		IsCustom:      q.IsCustom,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

func NewQuestionViewResponse(v *domain.QuestionView) *BankQuestionResponse {
	resp := NewBankQuestionResponse(&v.Question)
	resp.SourceLabel = v.SourceLabel
	resp.SourceAvailable = v.SourceAvailable
	return resp
}

func (r QuestionPatchRequest) ToPatch() domain.QuestionPatch {
	return domain.QuestionPatch{
		Text:         r.Question,
		Options:      r.Options,
		CorrectIndex: r.CorrectIndex,
		Explanation:  r.Explanation,
	}
}
