package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"mcq-bot/internal/domain"
	"mcq-bot/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{domain.NewQuestionNotFoundError("x"), fiber.StatusNotFound, "NOT_FOUND"},
		{domain.NewInvalidStateError("no quiz in progress"), fiber.StatusConflict, "INVALID_STATE"},
		{domain.NewValidationError("expected 4 options, got 3"), fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.NewUnsupportedFormatError("a.xls"), fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{domain.NewError(domain.CodeNoQuestionsGenerated, "none", nil), fiber.StatusUnprocessableEntity, "NO_QUESTIONS_GENERATED"},
		{domain.NewRateLimitError(errors.New("429")), fiber.StatusTooManyRequests, "RATE_LIMITED"},
		{domain.NewTimeoutError(errors.New("deadline")), fiber.StatusGatewayTimeout, "TIMEOUT"},
		{domain.NewTransportError(errors.New("conn reset")), fiber.StatusBadGateway, "TRANSPORT_ERROR"},
		{domain.NewInternalError("db down", errors.New("boom")), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("unexpected"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
		{fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed, "HTTP_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.expectedCode+"/"+tc.err.Error(), func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			var body middleware.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.expectedCode, body.Code)
			assert.Equal(t, tc.expectedStatus, body.Status)
		})
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{
			domain.NewMissingFieldError("question"),
			domain.NewOutOfRangeError("options", 3, 4, 4),
		}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "question", body.Errors[0].Field)
	assert.Equal(t, "options", body.Errors[1].Field)
}

func TestValidationMiddleware(t *testing.T) {
	vm := middleware.NewValidationMiddleware(100)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Get("/questions/:id", vm.ValidateQuestionID(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(middleware.ValidatedQuestionIDKey).(string))
	})
	app.Get("/bank", vm.ValidatePagination(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"limit":  c.Locals(middleware.ValidatedLimitKey),
			"offset": c.Locals(middleware.ValidatedOffsetKey),
		})
	})

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{"/questions/01HZY3Q8S6J4W0V2A1B2C3D4E5", fiber.StatusOK},
		{"/questions/not-a-ulid", fiber.StatusBadRequest},
		{"/bank", fiber.StatusOK},
		{"/bank?limit=50&offset=10", fiber.StatusOK},
		{"/bank?limit=500", fiber.StatusBadRequest},
		{"/bank?offset=-1", fiber.StatusBadRequest},
		{"/bank?limit=abc", fiber.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
}

func TestRequestLogger_RendersErrorsOnce(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestLogger())
	app.Get("/missing", func(c *fiber.Ctx) error { return domain.NewNotFoundError("gone") })
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Code)

	resp, err = app.Test(httptest.NewRequest("GET", "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
