package domain

import (
	"fmt"
	"strings"
	"time"
)

// OptionCount is the fixed number of answer options of every question.
const OptionCount = 4

// KnowledgeChunk is one segment of an uploaded document kept for provenance.
type KnowledgeChunk struct {
	ID               string
	OwnerID          string
	SourceDocumentID string
	SourceName       string
	ChunkIndex       int
	RawText          string
	CreatedAt        time.Time
}

// Label renders the chunk as "<source> - Chunk <n>".
func (c *KnowledgeChunk) Label() string {
	return fmt.Sprintf("%s - Chunk %d", c.SourceName, c.ChunkIndex+1)
}

// Question is a validated multiple-choice question owned by one user.
type Question struct {
	ID            string
	OwnerID       string
	SourceChunkID string // empty for custom questions
	Text          string
	Options       []string
	CorrectIndex  int
	Explanation   string
	IsCustom      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Normalize collapses whitespace in every text field.
func (q *Question) Normalize() {
	q.Text = NormalizeText(q.Text)
	q.Explanation = NormalizeText(q.Explanation)
	for i, opt := range q.Options {
		q.Options[i] = NormalizeText(opt)
	}
}

// Validate checks the structural invariant of a question.
func (q *Question) Validate() error {
	if q.Text == "" {
		return NewValidationError("question text is empty")
	}
	if len(q.Options) != OptionCount {
		return NewValidationError(fmt.Sprintf("expected %d options, got %d", OptionCount, len(q.Options)))
	}
	seen := make(map[string]int, OptionCount)
	for i, opt := range q.Options {
		if opt == "" {
			return NewValidationError(fmt.Sprintf("option %s is empty", OptionLetter(i)))
		}
		key := NormalizeKey(opt)
		if prev, ok := seen[key]; ok {
			return NewValidationError(fmt.Sprintf("options %s and %s are duplicates", OptionLetter(prev), OptionLetter(i)))
		}
		seen[key] = i
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= OptionCount {
		return NewValidationError(fmt.Sprintf("correct answer index %d is out of range", q.CorrectIndex))
	}
	if q.Explanation == "" {
		return NewValidationError("explanation is empty")
	}
	return nil
}

// IsCorrect grades a 0-based choice.
func (q *Question) IsCorrect(choice int) bool {
	return choice == q.CorrectIndex
}

// CorrectOption returns the text of the correct option.
func (q *Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// OptionLetter maps 0..3 to "A".."D".
func OptionLetter(i int) string {
	if i < 0 || i >= OptionCount {
		return "?"
	}
	return string(rune('A' + i))
}

// NormalizeText trims and collapses internal whitespace runs to single spaces.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeKey is the comparison key used for duplicate detection.
func NormalizeKey(s string) string {
	return strings.ToLower(NormalizeText(s))
}

// RejectedEntry is a generated block that failed parsing or validation.
type RejectedEntry struct {
	ChunkIndex int    `json:"chunk_index"`
	Reason     string `json:"reason"`
	RawBlock   string `json:"raw_block"`
}

// QuestionDraft is user input for a custom question.
type QuestionDraft struct {
	Text         string
	Options      []string
	CorrectIndex int
	Explanation  string
}

// QuestionPatch is a partial update; nil fields are left untouched.
type QuestionPatch struct {
	Text         *string
	Options      []string
	CorrectIndex *int
	Explanation  *string
}

func (p QuestionPatch) IsEmpty() bool {
	return p.Text == nil && p.Options == nil && p.CorrectIndex == nil && p.Explanation == nil
}

// ApplyTo returns a patched copy of q; q itself is not modified.
func (p QuestionPatch) ApplyTo(q Question) Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	if p.Text != nil {
		out.Text = *p.Text
	}
	if p.Options != nil {
		out.Options = append([]string(nil), p.Options...)
	}
	if p.CorrectIndex != nil {
		out.CorrectIndex = *p.CorrectIndex
	}
	if p.Explanation != nil {
		out.Explanation = *p.Explanation
	}
	return out
}

// QuestionView is a question together with its source provenance.
type QuestionView struct {
	Question
	SourceLabel     string
	SourceAvailable bool
}
