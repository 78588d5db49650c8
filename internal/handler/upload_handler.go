package handler

import (
	"errors"
	"io"
	"strings"

	"mcq-bot/internal/domain"
	"mcq-bot/internal/dto"
	"mcq-bot/internal/middleware"
	"mcq-bot/internal/service"
	"mcq-bot/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// UploadFailureResponse is an error response that still carries the upload summary
type UploadFailureResponse struct {
	middleware.ErrorResponse
	Summary *service.UploadSummary `json:"summary"`
}

// UploadHandler turns documents and pasted text into questions
type UploadHandler struct {
	ingestion service.IngestionService
	validator *validation.Validator
}

// NewUploadHandler creates a new UploadHandler instance
func NewUploadHandler(ingestion service.IngestionService) *UploadHandler {
	return &UploadHandler{
		ingestion: ingestion,
		validator: validation.NewValidator(),
	}
}

// Upload godoc
// @Summary Upload a document or pasted text
// @Description multipart "file" (txt, md, pdf, docx) or JSON {source_name, text}
// @Tags uploads
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Success 201 {object} service.UploadSummary
// @Failure 415 {object} middleware.ErrorResponse
// @Failure 422 {object} handler.UploadFailureResponse
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	owner := middleware.OwnerID(c)

	var (
		summary *service.UploadSummary
		err     error
	)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		summary, err = h.uploadFile(c, owner)
	} else {
		summary, err = h.uploadText(c, owner)
	}

	if err != nil {
		var domainErr *domain.DomainError
		if summary != nil && errors.As(err, &domainErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(UploadFailureResponse{
				ErrorResponse: middleware.ErrorResponse{
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Status:  fiber.StatusUnprocessableEntity,
				},
				Summary: summary,
			})
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(summary)
}

func (h *UploadHandler) uploadFile(c *fiber.Ctx, owner string) (*service.UploadSummary, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	f, err := header.Open()
	if err != nil {
		return nil, domain.NewInternalError("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.NewInternalError("failed to read upload", err)
	}
	return h.ingestion.UploadDocument(c.Context(), owner, header.Filename, data)
}

func (h *UploadHandler) uploadText(c *fiber.Ctx, owner string) (*service.UploadSummary, error) {
	var req dto.TextUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateTextUpload(req.Text); len(errs) > 0 {
		return nil, errs
	}
	return h.ingestion.UploadText(c.Context(), owner, req.SourceName, req.Text)
}
