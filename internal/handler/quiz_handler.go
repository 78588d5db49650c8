package handler

import (
	"mcq-bot/internal/domain"
	"mcq-bot/internal/dto"
	"mcq-bot/internal/middleware"
	"mcq-bot/internal/service"
	"mcq-bot/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz session HTTP requests
type QuizHandler struct {
	sessions  service.SessionManager
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(sessions service.SessionManager) *QuizHandler {
	return &QuizHandler{
		sessions:  sessions,
		validator: validation.NewValidator(),
	}
}

// StartQuiz godoc
// @Summary Start a quiz
// @Description Samples questions from the bank and returns the first one
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.StartQuizRequest false "Quiz length, 0 for the daily count"
// @Success 201 {object} dto.StartQuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quiz [post]
func (h *QuizHandler) StartQuiz(c *fiber.Ctx) error {
	var req dto.StartQuizRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("invalid request body")
		}
	}
	if errs := h.validator.ValidateQuizCount(req.Count); len(errs) > 0 {
		return errs
	}

	start, err := h.sessions.Start(c.Context(), middleware.OwnerID(c), req.Count)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.StartQuizResponse{
		Total:     start.Total,
		StartedAt: start.StartedAt,
		Question:  dto.NewQuestionResponse(start.FirstQuestion, 1, start.Total),
	})
}

// CurrentQuestion godoc
// @Summary Get the question awaiting an answer
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.CurrentQuestionResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quiz/current [get]
func (h *QuizHandler) CurrentQuestion(c *fiber.Ctx) error {
	q, progress, err := h.sessions.Current(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	total := progress.Answered + progress.Remaining
	return c.JSON(dto.CurrentQuestionResponse{
		Question: dto.NewQuestionResponse(q, progress.Answered+1, total),
		Progress: progress,
	})
}

// SubmitAnswer godoc
// @Summary Answer the current question
// @Description Accepts a 0-based choice or a letter A-D
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.AnswerRequest true "Answer"
// @Success 200 {object} dto.AnswerResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quiz/answer [post]
func (h *QuizHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	choice, errs := h.validator.ValidateAnswer(req.Choice, req.Letter)
	if len(errs) > 0 {
		return errs
	}

	result, err := h.sessions.Submit(c.Context(), middleware.OwnerID(c), choice)
	if err != nil {
		return err
	}

	total := result.Progress.Answered + result.Progress.Remaining
	return c.JSON(dto.AnswerResponse{
		Correct:       result.Record.Correct,
		Choice:        result.Record.Choice,
		CorrectIndex:  result.Record.CorrectIndex,
		CorrectAnswer: result.Question.CorrectOption(),
		Explanation:   result.Question.Explanation,
		NextQuestion:  dto.NewQuestionResponse(result.NextQuestion, result.Progress.Answered+1, total),
		Progress:      result.Progress,
		Summary:       result.Summary,
	})
}

// CancelQuiz godoc
// @Summary End the quiz early
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.CancelQuizResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /quiz/cancel [post]
func (h *QuizHandler) CancelQuiz(c *fiber.Ctx) error {
	progress, err := h.sessions.Cancel(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.CancelQuizResponse{Progress: progress})
}
