package handler

import (
	"mcq-bot/internal/domain"
	"mcq-bot/internal/dto"
	"mcq-bot/internal/middleware"
	"mcq-bot/internal/service"
	"mcq-bot/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// BankHandler handles question bank and knowledge requests
type BankHandler struct {
	bank      service.BankService
	validator *validation.Validator
}

// NewBankHandler creates a new BankHandler instance
func NewBankHandler(bank service.BankService) *BankHandler {
	return &BankHandler{
		bank:      bank,
		validator: validation.NewValidator(),
	}
}

// GetBank godoc
// @Summary Bank summary and one page of questions
// @Tags bank
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.BankResponse
// @Router /bank [get]
func (h *BankHandler) GetBank(c *fiber.Ctx) error {
	owner := middleware.OwnerID(c)
	limit, _ := c.Locals(middleware.ValidatedLimitKey).(int)
	offset, _ := c.Locals(middleware.ValidatedOffsetKey).(int)
	if limit == 0 {
		limit = service.DefaultPageSize
	}

	summary, err := h.bank.Stats(c.Context(), owner)
	if err != nil {
		return err
	}
	questions, err := h.bank.List(c.Context(), owner, limit, offset)
	if err != nil {
		return err
	}

	resp := dto.BankResponse{
		Summary:   summary,
		Questions: make([]*dto.BankQuestionResponse, 0, len(questions)),
		Limit:     limit,
		Offset:    offset,
	}
	for _, q := range questions {
		resp.Questions = append(resp.Questions, dto.NewBankQuestionResponse(q))
	}
	return c.JSON(resp)
}

// GetQuestion godoc
// @Summary Get one question with its source
// @Tags bank
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} dto.BankQuestionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /bank/questions/{id} [get]
func (h *BankHandler) GetQuestion(c *fiber.Ctx) error {
	view, err := h.bank.Get(c.Context(), middleware.OwnerID(c), questionID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuestionViewResponse(view))
}

// CreateQuestion godoc
// @Summary Add a custom question
// @Tags bank
// @Accept json
// @Produce json
// @Param request body dto.QuestionDraftRequest true "Question"
// @Success 201 {object} dto.BankQuestionResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /bank/questions [post]
func (h *BankHandler) CreateQuestion(c *fiber.Ctx) error {
	var req dto.QuestionDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateQuestionDraft(req.Question, req.Options, req.CorrectIndex, req.Explanation); len(errs) > 0 {
		return errs
	}

	q, err := h.bank.AddCustom(c.Context(), middleware.OwnerID(c), domain.QuestionDraft{
		Text:         req.Question,
		Options:      req.Options,
		CorrectIndex: *req.CorrectIndex,
		Explanation:  req.Explanation,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewBankQuestionResponse(q))
}

// UpdateQuestion godoc
// @Summary Edit a question
// @Tags bank
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param request body dto.QuestionPatchRequest true "Changed fields"
// @Success 200 {object} dto.BankQuestionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /bank/questions/{id} [patch]
func (h *BankHandler) UpdateQuestion(c *fiber.Ctx) error {
	var req dto.QuestionPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	q, err := h.bank.Edit(c.Context(), middleware.OwnerID(c), questionID(c), req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewBankQuestionResponse(q))
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags bank
// @Param id path string true "Question ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /bank/questions/{id} [delete]
func (h *BankHandler) DeleteQuestion(c *fiber.Ctx) error {
	if err := h.bank.Delete(c.Context(), middleware.OwnerID(c), questionID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearQuestions godoc
// @Summary Delete every question of the caller
// @Tags bank
// @Produce json
// @Success 200 {object} dto.ClearResponse
// @Router /bank/questions [delete]
func (h *BankHandler) ClearQuestions(c *fiber.Ctx) error {
	removed, err := h.bank.ClearQuestions(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ClearResponse{Removed: removed})
}

// ClearKnowledge godoc
// @Summary Delete stored document chunks, keeping questions
// @Tags knowledge
// @Produce json
// @Success 200 {object} dto.ClearResponse
// @Router /knowledge [delete]
func (h *BankHandler) ClearKnowledge(c *fiber.Ctx) error {
	removed, err := h.bank.ClearKnowledge(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.ClearResponse{Removed: removed})
}

func questionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.ValidatedQuestionIDKey).(string); ok {
		return id
	}
	return c.Params("id")
}
