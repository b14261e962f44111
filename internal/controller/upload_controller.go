package controller

import (
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"rag-chat-be/internal/pkg/apperrors"
	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/internal/service"
	"rag-chat-be/pkg/extract"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Ingest(ctx *fiber.Ctx) error
}

type uploadController struct {
	ingestionService service.IIngestionService
	maxBytes         int64
}

func NewUploadController(ingestionService service.IIngestionService, maxMB int) IUploadController {
	if maxMB <= 0 {
		maxMB = 25
	}
	return &uploadController{
		ingestionService: ingestionService,
		maxBytes:         int64(maxMB) << 20,
	}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload/v1", c.Upload)
	r.Post("/ingest/v1", c.Ingest)
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperrors.NewValidation(http.StatusBadRequest, "missing_file", "Multipart field 'file' is required")
	}

	if contentType := fileHeader.Header.Get("Content-Type"); !strings.EqualFold(contentType, "application/pdf") {
		return apperrors.NewValidation(http.StatusUnsupportedMediaType, "unsupported_type", "Only PDF uploads are accepted")
	}
	if fileHeader.Size > c.maxBytes {
		return apperrors.NewValidation(http.StatusRequestEntityTooLarge, "file_too_large", "Upload exceeds the size limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, c.maxBytes+1))
	if err != nil {
		return err
	}
	if int64(len(data)) > c.maxBytes {
		return apperrors.NewValidation(http.StatusRequestEntityTooLarge, "file_too_large", "Upload exceeds the size limit")
	}

	// Content sniffing, not just the extension: reject renamed non-PDFs.
	if !extract.LooksLikePDF(data) {
		return apperrors.NewValidation(http.StatusUnsupportedMediaType, "not_a_pdf", "File content is not a PDF document")
	}

	res, err := c.ingestionService.IngestUpload(ctx.Context(), fileHeader.Filename, data)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *uploadController) Ingest(ctx *fiber.Ctx) error {
	report, err := c.ingestionService.IngestPending(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", report))
}
