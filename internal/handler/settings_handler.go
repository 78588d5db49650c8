package handler

import (
	"mcq-bot/internal/domain"
	"mcq-bot/internal/dto"
	"mcq-bot/internal/middleware"
	"mcq-bot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler serves schedule settings and answer statistics
type SettingsHandler struct {
	settings service.SettingsService
	stats    service.StatsTracker
	bank     service.BankService
}

// NewSettingsHandler creates a new SettingsHandler instance
func NewSettingsHandler(settings service.SettingsService, stats service.StatsTracker, bank service.BankService) *SettingsHandler {
	return &SettingsHandler{settings: settings, stats: stats, bank: bank}
}

// GetSettings godoc
// @Summary Get schedule and generation settings
// @Tags settings
// @Produce json
// @Success 200 {object} dto.SettingsResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.Context(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSettingsResponse(settings))
}

// UpdateSettings godoc
// @Summary Change settings
// @Tags settings
// @Accept json
// @Produce json
// @Param request body dto.SettingsUpdateRequest true "Changed fields"
// @Success 200 {object} dto.SettingsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.SettingsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}

	settings, err := h.settings.Update(c.Context(), middleware.OwnerID(c), service.SettingsUpdate{
		DailyQuizTime:      req.DailyQuizTime,
		Timezone:           req.Timezone,
		Frequency:          req.Frequency,
		MinQuestions:       req.MinQuestions,
		MaxQuestions:       req.MaxQuestions,
		DailyQuestionCount: req.DailyQuestionCount,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSettingsResponse(settings))
}

// GetStats godoc
// @Summary Answer statistics
// @Tags stats
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Router /stats [get]
func (h *SettingsHandler) GetStats(c *fiber.Ctx) error {
	owner := middleware.OwnerID(c)
	summary, err := h.stats.Summary(c.Context(), owner)
	if err != nil {
		return err
	}
	bank, err := h.bank.Stats(c.Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(dto.StatsResponse{
		TotalAnswered: summary.TotalAnswered,
		TotalCorrect:  summary.TotalCorrect,
		Accuracy:      summary.Accuracy,
		QuestionCount: bank.QuestionCount,
		SourceCount:   bank.SourceCount,
	})
}
