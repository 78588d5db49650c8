package domain

import (
	"fmt"
	"time"
)

// SessionState is the lifecycle state of a quiz session
type SessionState int

const (
	SessionNotStarted SessionState = iota
	SessionInProgress
	SessionCompleted
	SessionCancelled
)

func (s SessionState) String() string {
	switch s {
	case SessionNotStarted:
		return "not_started"
	case SessionInProgress:
		return "in_progress"
	case SessionCompleted:
		return "completed"
	case SessionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// AnswerRecord is one graded answer of a session
type AnswerRecord struct {
	QuestionID   string    `json:"question_id"`
	Choice       int       `json:"choice"`
	CorrectIndex int       `json:"correct_index"`
	Correct      bool      `json:"correct"`
	AnsweredAt   time.Time `json:"answered_at"`
}

// QuizSummary is returned when the last question has been answered
type QuizSummary struct {
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	Accuracy  float64        `json:"accuracy"`
	Breakdown []AnswerRecord `json:"breakdown"`
}

// QuizProgress is returned when a session ends early
type QuizProgress struct {
	Answered  int `json:"answered"`
	Correct   int `json:"correct"`
	Remaining int `json:"remaining"`
}

// QuizSession drives one quiz run. It is not safe for concurrent use;
// callers serialize access per owner.
type QuizSession struct {
	OwnerID       string
	Questions     []*Question
	CurrentIndex  int
	NumberCorrect int
	StartedAt     time.Time

	state   SessionState
	answers []AnswerRecord
}

func NewQuizSession(ownerID string) *QuizSession {
	return &QuizSession{OwnerID: ownerID, state: SessionNotStarted}
}

func (s *QuizSession) State() SessionState {
	return s.state
}

// Start moves a fresh session to InProgress with the sampled questions.
func (s *QuizSession) Start(questions []*Question, now time.Time) error {
	if s.state != SessionNotStarted {
		return NewInvalidStateError(fmt.Sprintf("cannot start a quiz that is %s", s.state))
	}
	if len(questions) == 0 {
		return NewNotFoundError("question bank is empty")
	}
	s.Questions = questions
	s.CurrentIndex = 0
	s.NumberCorrect = 0
	s.StartedAt = now
	s.answers = make([]AnswerRecord, 0, len(questions))
	s.state = SessionInProgress
	return nil
}

// QuestionIDs returns the drawn question ids in quiz order.
func (s *QuizSession) QuestionIDs() []string {
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Current returns the question awaiting an answer.
func (s *QuizSession) Current() (*Question, error) {
	if s.state != SessionInProgress {
		return nil, NewInvalidStateError(fmt.Sprintf("no question to answer, quiz is %s", s.state))
	}
	return s.Questions[s.CurrentIndex], nil
}

// Submit grades choice against the current question. record is called with the
// graded answer before any state changes; if it fails the session is unchanged.
// The summary is non-nil once the last question is answered.
func (s *QuizSession) Submit(choice int, now time.Time, record func(AnswerRecord) error) (AnswerRecord, *QuizSummary, error) {
	q, err := s.Current()
	if err != nil {
		return AnswerRecord{}, nil, err
	}
	if choice < 0 || choice >= OptionCount {
		return AnswerRecord{}, nil, NewValidationError(fmt.Sprintf("choice must be between 0 and %d", OptionCount-1))
	}

	rec := AnswerRecord{
		QuestionID:   q.ID,
		Choice:       choice,
		CorrectIndex: q.CorrectIndex,
		Correct:      q.IsCorrect(choice),
		AnsweredAt:   now,
	}
	if record != nil {
		if err := record(rec); err != nil {
			return AnswerRecord{}, nil, err
		}
	}

	s.answers = append(s.answers, rec)
	if rec.Correct {
		s.NumberCorrect++
	}
	s.CurrentIndex++
	if s.CurrentIndex == len(s.Questions) {
		s.state = SessionCompleted
		summary := s.Summary()
		return rec, &summary, nil
	}
	return rec, nil, nil
}

// Cancel ends an in-progress session and reports how far it got.
func (s *QuizSession) Cancel() (QuizProgress, error) {
	if s.state != SessionInProgress {
		return QuizProgress{}, NewInvalidStateError(fmt.Sprintf("cannot cancel a quiz that is %s", s.state))
	}
	s.state = SessionCancelled
	return s.Progress(), nil
}

func (s *QuizSession) Progress() QuizProgress {
	return QuizProgress{
		Answered:  len(s.answers),
		Correct:   s.NumberCorrect,
		Remaining: len(s.Questions) - len(s.answers),
	}
}

func (s *QuizSession) Summary() QuizSummary {
	breakdown := make([]AnswerRecord, len(s.answers))
	copy(breakdown, s.answers)
	return QuizSummary{
		Score:     s.NumberCorrect,
		Total:     len(s.Questions),
		Accuracy:  Accuracy(s.NumberCorrect, len(s.Questions)),
		Breakdown: breakdown,
	}
}
