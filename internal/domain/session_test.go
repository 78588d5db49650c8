package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionQuestions(n int) []*Question {
	qs := make([]*Question, n)
	for i := range qs {
		q := validQuestion()
		q.ID = string(rune('a' + i))
		q.CorrectIndex = i % OptionCount
		qs[i] = &q
	}
	return qs
}

func TestQuizSession_FullRun(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	s := NewQuizSession("owner-1")
	require.Equal(t, SessionNotStarted, s.State())

	require.NoError(t, s.Start(sessionQuestions(3), now))
	assert.Equal(t, SessionInProgress, s.State())
	assert.Equal(t, []string{"a", "b", "c"}, s.QuestionIDs())

	var recorded []AnswerRecord
	record := func(r AnswerRecord) error {
		recorded = append(recorded, r)
		return nil
	}

	rec, summary, err := s.Submit(0, now, record)
	require.NoError(t, err)
	assert.True(t, rec.Correct)
	assert.Nil(t, summary)

	rec, summary, err = s.Submit(0, now, record)
	require.NoError(t, err)
	assert.False(t, rec.Correct)
	assert.Nil(t, summary)

	_, summary, err = s.Submit(2, now, record)
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, SessionCompleted, s.State())
	assert.Equal(t, 2, summary.Score)
	assert.Equal(t, 3, summary.Total)
	assert.InDelta(t, 2.0/3.0, summary.Accuracy, 1e-9)
	assert.Len(t, summary.Breakdown, 3)
	assert.Len(t, recorded, 3)

	correct := 0
	for _, r := range recorded {
		if r.Correct {
			correct++
		}
	}
	assert.Equal(t, correct, summary.Score)
}

func TestQuizSession_InvalidState(t *testing.T) {
	now := time.Now()

	t.Run("submit before start", func(t *testing.T) {
		s := NewQuizSession("o")
		_, _, err := s.Submit(0, now, nil)
		assert.True(t, IsCode(err, CodeInvalidState))
	})

	t.Run("cancel before start", func(t *testing.T) {
		s := NewQuizSession("o")
		_, err := s.Cancel()
		assert.True(t, IsCode(err, CodeInvalidState))
	})

	t.Run("start twice", func(t *testing.T) {
		s := NewQuizSession("o")
		require.NoError(t, s.Start(sessionQuestions(2), now))
		err := s.Start(sessionQuestions(2), now)
		assert.True(t, IsCode(err, CodeInvalidState))
		assert.Equal(t, SessionInProgress, s.State())
	})

	t.Run("submit after completion", func(t *testing.T) {
		s := NewQuizSession("o")
		require.NoError(t, s.Start(sessionQuestions(1), now))
		_, _, err := s.Submit(1, now, nil)
		require.NoError(t, err)
		_, _, err = s.Submit(1, now, nil)
		assert.True(t, IsCode(err, CodeInvalidState))
		_, err = s.Cancel()
		assert.True(t, IsCode(err, CodeInvalidState))
	})

	t.Run("submit after cancel", func(t *testing.T) {
		s := NewQuizSession("o")
		require.NoError(t, s.Start(sessionQuestions(2), now))
		_, err := s.Cancel()
		require.NoError(t, err)
		_, _, err = s.Submit(0, now, nil)
		assert.True(t, IsCode(err, CodeInvalidState))
	})
}

func TestQuizSession_StartEmpty(t *testing.T) {
	s := NewQuizSession("o")
	err := s.Start(nil, time.Now())
	assert.True(t, IsCode(err, CodeNotFound))
	assert.Equal(t, SessionNotStarted, s.State())
}

func TestQuizSession_SubmitChoiceOutOfRange(t *testing.T) {
	s := NewQuizSession("o")
	require.NoError(t, s.Start(sessionQuestions(2), time.Now()))

	_, _, err := s.Submit(4, time.Now(), nil)
	assert.True(t, IsCode(err, CodeValidation))
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, SessionInProgress, s.State())
}

func TestQuizSession_RecordFailureLeavesStateUnchanged(t *testing.T) {
	s := NewQuizSession("o")
	require.NoError(t, s.Start(sessionQuestions(2), time.Now()))

	boom := errors.New("db down")
	_, _, err := s.Submit(0, time.Now(), func(AnswerRecord) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Equal(t, 0, s.NumberCorrect)
	assert.Equal(t, QuizProgress{Answered: 0, Correct: 0, Remaining: 2}, s.Progress())
}

func TestQuizSession_CancelReportsProgress(t *testing.T) {
	s := NewQuizSession("o")
	require.NoError(t, s.Start(sessionQuestions(3), time.Now()))
	_, _, err := s.Submit(0, time.Now(), nil)
	require.NoError(t, err)

	progress, err := s.Cancel()
	require.NoError(t, err)
	assert.Equal(t, QuizProgress{Answered: 1, Correct: 1, Remaining: 2}, progress)
	assert.Equal(t, SessionCancelled, s.State())
}
