package handler

import (
	"mcq-bot/internal/dto"
	"mcq-bot/internal/middleware"
	"mcq-bot/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Quiz     *QuizHandler
	Upload   *UploadHandler
	Bank     *BankHandler
	Settings *SettingsHandler
}

// helpEntries is the command catalogue returned by GET /api/help
var helpEntries = []dto.HelpEntry{
	{Method: fiber.MethodPost, Path: "/api/uploads", Description: "Upload a txt, md, pdf or docx file (multipart \"file\") or JSON {source_name, text} to generate questions"},
	{Method: fiber.MethodPost, Path: "/api/quiz", Description: "Start a quiz; {count} defaults to your daily question count"},
	{Method: fiber.MethodGet, Path: "/api/quiz/current", Description: "Show the question awaiting an answer"},
	{Method: fiber.MethodPost, Path: "/api/quiz/answer", Description: "Answer with {choice: 0-3} or {letter: \"A\"-\"D\"}"},
	{Method: fiber.MethodPost, Path: "/api/quiz/cancel", Description: "End the current quiz early"},
	{Method: fiber.MethodGet, Path: "/api/bank", Description: "Bank summary and a page of questions (?limit, ?offset)"},
	{Method: fiber.MethodPost, Path: "/api/bank/questions", Description: "Add a custom question"},
	{Method: fiber.MethodGet, Path: "/api/bank/questions/:id", Description: "Show a question with its source"},
	{Method: fiber.MethodPatch, Path: "/api/bank/questions/:id", Description: "Edit a question"},
	{Method: fiber.MethodDelete, Path: "/api/bank/questions/:id", Description: "Delete a question"},
	{Method: fiber.MethodDelete, Path: "/api/bank/questions", Description: "Delete every question"},
	{Method: fiber.MethodDelete, Path: "/api/knowledge", Description: "Delete stored document text, keeping questions"},
	{Method: fiber.MethodGet, Path: "/api/settings", Description: "Show quiz schedule and generation settings"},
	{Method: fiber.MethodPut, Path: "/api/settings", Description: "Change settings (daily_quiz_time, timezone, frequency, min_questions, max_questions, daily_questions)"},
	{Method: fiber.MethodGet, Path: "/api/stats", Description: "Show answer statistics"},
	{Method: fiber.MethodGet, Path: "/api/help", Description: "Show this list"},
}

// Help godoc
// @Summary List available commands
// @Tags help
// @Produce json
// @Success 200 {object} dto.HelpResponse
// @Router /help [get]
func Help(c *fiber.Ctx) error {
	return c.JSON(dto.HelpResponse{Commands: helpEntries})
}

// Health reports liveness
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h Handlers, tokens service.TokenService) {
	api := app.Group("/api")
	api.Get("/health", Health)
	api.Get("/help", Help)

	validator := middleware.NewValidationMiddleware(service.MaxPageSize)
	protected := api.Group("", middleware.Protected(tokens))

	protected.Post("/uploads", h.Upload.Upload)

	protected.Post("/quiz", h.Quiz.StartQuiz)
	protected.Get("/quiz/current", h.Quiz.CurrentQuestion)
	protected.Post("/quiz/answer", h.Quiz.SubmitAnswer)
	protected.Post("/quiz/cancel", h.Quiz.CancelQuiz)

	protected.Get("/bank", validator.ValidatePagination(), h.Bank.GetBank)
	protected.Post("/bank/questions", h.Bank.CreateQuestion)
	protected.Delete("/bank/questions", h.Bank.ClearQuestions)
	protected.Get("/bank/questions/:id", validator.ValidateQuestionID(), h.Bank.GetQuestion)
	protected.Patch("/bank/questions/:id", validator.ValidateQuestionID(), h.Bank.UpdateQuestion)
	protected.Delete("/bank/questions/:id", validator.ValidateQuestionID(), h.Bank.DeleteQuestion)
	protected.Delete("/knowledge", h.Bank.ClearKnowledge)

	protected.Get("/settings", h.Settings.GetSettings)
	protected.Put("/settings", h.Settings.UpdateSettings)
	protected.Get("/stats", h.Settings.GetStats)
}
