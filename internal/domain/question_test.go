package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validQuestion() Question {
	return Question{
		ID:           "q1",
		OwnerID:      "owner-1",
		Text:         "What does the mitochondria produce?",
		Options:      []string{"ATP", "DNA", "RNA", "Glucose"},
		CorrectIndex: 0,
		Explanation:  "The text says mitochondria produce ATP.",
	}
}

func TestQuestion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Question)
		wantErr string
	}{
		{"valid question", func(q *Question) {}, ""},
		{"empty text", func(q *Question) { q.Text = "" }, "question text is empty"},
		{"three options", func(q *Question) { q.Options = q.Options[:3] }, "expected 4 options, got 3"},
		{"five options", func(q *Question) { q.Options = append(q.Options, "Lipids") }, "expected 4 options, got 5"},
		{"empty option", func(q *Question) { q.Options[2] = "" }, "option C is empty"},
		{"duplicate option", func(q *Question) { q.Options[3] = "atp" }, "options A and D are duplicates"},
		{"negative answer index", func(q *Question) { q.CorrectIndex = -1 }, "out of range"},
		{"answer index too large", func(q *Question) { q.CorrectIndex = 4 }, "out of range"},
		{"empty explanation", func(q *Question) { q.Explanation = "" }, "explanation is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, IsCode(err, CodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestQuestion_Normalize(t *testing.T) {
	q := Question{
		Text:        "  What   is\n Go? ",
		Options:     []string{" A  language ", "A\tbird", "A car", "A city"},
		Explanation: " Go is a\nlanguage ",
	}
	q.Normalize()

	assert.Equal(t, "What is Go?", q.Text)
	assert.Equal(t, []string{"A language", "A bird", "A car", "A city"}, q.Options)
	assert.Equal(t, "Go is a language", q.Explanation)
}

func TestQuestionPatch_ApplyTo(t *testing.T) {
	original := validQuestion()
	newText := "Which molecule stores energy?"
	idx := 2

	patched := QuestionPatch{Text: &newText, CorrectIndex: &idx}.ApplyTo(original)
	assert.Equal(t, newText, patched.Text)
	assert.Equal(t, 2, patched.CorrectIndex)
	assert.Equal(t, original.Options, patched.Options)

	patched.Options[0] = "changed"
	assert.Equal(t, "ATP", original.Options[0], "patch must not alias the original options")

	dup := QuestionPatch{Options: []string{"a", "a", "b", "c"}}.ApplyTo(original)
	assert.Error(t, dup.Validate())
	assert.Equal(t, []string{"ATP", "DNA", "RNA", "Glucose"}, original.Options)
}

func TestKnowledgeChunk_Label(t *testing.T) {
	c := KnowledgeChunk{SourceName: "biology.pdf", ChunkIndex: 1}
	assert.Equal(t, "biology.pdf - Chunk 2", c.Label())
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Accuracy(0, 0))
	assert.Equal(t, 0.0, Accuracy(3, -1))
	assert.InDelta(t, 0.75, Accuracy(3, 4), 1e-9)
}
