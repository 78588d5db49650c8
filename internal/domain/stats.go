package domain

import "time"

// QuestionHistory is the per-question slice of a StatsRecord
type QuestionHistory struct {
	QuestionID      string    `json:"question_id"`
	Attempts        int       `json:"attempts"`
	CorrectAttempts int       `json:"correct_attempts"`
	LastSeenAt      time.Time `json:"last_seen_at"`
}

// StatsRecord aggregates every answer an owner has given
type StatsRecord struct {
	OwnerID       string                     `json:"owner_id"`
	TotalAnswered int                        `json:"total_answered"`
	TotalCorrect  int                        `json:"total_correct"`
	History       map[string]QuestionHistory `json:"per_question_history"`
}

// StatsSummary is the read model of a StatsRecord
type StatsSummary struct {
	TotalAnswered int     `json:"total_answered"`
	TotalCorrect  int     `json:"total_correct"`
	Accuracy      float64 `json:"accuracy"`
}

// BankSummary describes the size and usage of an owner's question bank
type BankSummary struct {
	QuestionCount int     `json:"question_count"`
	CustomCount   int     `json:"custom_count"`
	SourceCount   int     `json:"source_count"`
	TotalAnswered int     `json:"total_answered"`
	TotalCorrect  int     `json:"total_correct"`
	Accuracy      float64 `json:"accuracy"`
}

// Accuracy returns correct/total in [0,1], 0 when total is 0.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
