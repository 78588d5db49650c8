package middleware

import (
	"mcq-bot/internal/domain"
	"mcq-bot/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedQuestionIDKey = "validated_question_id"
	ValidatedLimitKey      = "validated_limit"
	ValidatedOffsetKey     = "validated_offset"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
	maxLimit  int
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(maxLimit int) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
		maxLimit:  maxLimit,
	}
}

// ValidateQuestionID validates the :id path parameter
func (vm *ValidationMiddleware) ValidateQuestionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if errors := vm.validator.ValidateQuestionID(id); len(errors) > 0 {
			return errors // handled by ErrorHandler
		}
		c.Locals(ValidatedQuestionIDKey, id)
		return c.Next()
	}
}

// ValidatePagination validates limit and offset query parameters
func (vm *ValidationMiddleware) ValidatePagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := parseNonNegative(c.Query("limit"))
		if err != nil {
			return domain.ValidationErrors{domain.NewInvalidFormatError("limit", c.Query("limit"))}
		}
		offset, err := parseNonNegative(c.Query("offset"))
		if err != nil {
			return domain.ValidationErrors{domain.NewInvalidFormatError("offset", c.Query("offset"))}
		}

		if errors := vm.validator.ValidatePagination(limit, offset, vm.maxLimit); len(errors) > 0 {
			return errors
		}

		c.Locals(ValidatedLimitKey, limit)
		c.Locals(ValidatedOffsetKey, offset)
		return c.Next()
	}
}

// parseNonNegative parses an optional decimal query value; "" is 0
func parseNonNegative(s string) (int, error) {
	n := 0
	for _, char := range s {
		if char < '0' || char > '9' {
			return 0, domain.NewValidationError("must be a number")
		}
		n = n*10 + int(char-'0')
		if n > 1_000_000 {
			return 0, domain.NewValidationError("value is too large")
		}
	}
	return n, nil
}
