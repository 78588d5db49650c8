package validation

import (
	"regexp"
	"strings"

	"mcq-bot/internal/domain"
)

const (
	MaxQuizCount       = 50
	MaxQuestionLength  = 1000
	MaxOptionLength    = 300
	MaxExplanationSize = 2000
	MaxUploadTextSize  = 2 << 20
)

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateQuestionID validates a question id path parameter
func (v *Validator) ValidateQuestionID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("id"))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError("id", id))
	}
	return errors
}

// ValidatePagination validates bank listing parameters. limit 0 means default.
func (v *Validator) ValidatePagination(limit, offset, maxLimit int) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if limit < 0 || limit > maxLimit {
		errors = append(errors, domain.NewOutOfRangeError("limit", limit, 0, maxLimit))
	}
	if offset < 0 {
		errors = append(errors, domain.ValidationError{Field: "offset", Message: "must not be negative", Value: offset})
	}
	return errors
}

// ValidateQuizCount validates the requested quiz length. 0 means the daily count.
func (v *Validator) ValidateQuizCount(count int) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if count < 0 || count > MaxQuizCount {
		errors = append(errors, domain.NewOutOfRangeError("count", count, 0, MaxQuizCount))
	}
	return errors
}

// ValidateAnswer resolves a 0-based choice or an A-D letter into a 0-based index
func (v *Validator) ValidateAnswer(choice *int, letter string) (int, domain.ValidationErrors) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	switch {
	case choice != nil:
		if *choice < 0 || *choice >= domain.OptionCount {
			return 0, domain.ValidationErrors{domain.NewOutOfRangeError("choice", *choice, 0, domain.OptionCount-1)}
		}
		return *choice, nil
	case letter != "":
		if len(letter) != 1 || letter[0] < 'A' || letter[0] >= 'A'+domain.OptionCount {
			return 0, domain.ValidationErrors{domain.NewInvalidFormatError("letter", letter)}
		}
		return int(letter[0] - 'A'), nil
	default:
		return 0, domain.ValidationErrors{domain.NewMissingFieldError("choice")}
	}
}

// ValidateQuestionDraft checks request-level limits of a custom question.
// The structural rules of a question are enforced by the domain.
func (v *Validator) ValidateQuestionDraft(text string, options []string, correctIndex *int, explanation string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(text) == "" {
		errors = append(errors, domain.NewMissingFieldError("question"))
	} else if len(text) > MaxQuestionLength {
		errors = append(errors, domain.NewOutOfRangeError("question", len(text), 1, MaxQuestionLength))
	}

	if len(options) != domain.OptionCount {
		errors = append(errors, domain.NewOutOfRangeError("options", len(options), domain.OptionCount, domain.OptionCount))
	}
	for _, opt := range options {
		if len(opt) > MaxOptionLength {
			errors = append(errors, domain.NewOutOfRangeError("options", len(opt), 1, MaxOptionLength))
			break
		}
	}

	if correctIndex == nil {
		errors = append(errors, domain.NewMissingFieldError("correct_index"))
	}

	if strings.TrimSpace(explanation) == "" {
		errors = append(errors, domain.NewMissingFieldError("explanation"))
	} else if len(explanation) > MaxExplanationSize {
		errors = append(errors, domain.NewOutOfRangeError("explanation", len(explanation), 1, MaxExplanationSize))
	}

	return errors
}

// ValidateTextUpload validates pasted text
func (v *Validator) ValidateTextUpload(text string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(text) == "" {
		errors = append(errors, domain.NewMissingFieldError("text"))
	} else if len(text) > MaxUploadTextSize {
		errors = append(errors, domain.NewOutOfRangeError("text", len(text), 1, MaxUploadTextSize))
	}
	return errors
}

// Helper functions for validation

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	return validULID.MatchString(strings.ToUpper(s))
}
