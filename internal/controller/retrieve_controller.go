package controller

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/apperrors"
	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/internal/service"
)

type IRetrieveController interface {
	RegisterRoutes(r fiber.Router)
	Retrieve(ctx *fiber.Ctx) error
}

type retrieveController struct {
	retrievalService service.IRetrievalService
}

func NewRetrieveController(retrievalService service.IRetrievalService) IRetrieveController {
	return &retrieveController{
		retrievalService: retrievalService,
	}
}

func (c *retrieveController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/retrieve/v1")
	h.Post("", c.Retrieve)
}

func (c *retrieveController) Retrieve(ctx *fiber.Ctx) error {
	var req dto.RetrieveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.NewValidation(http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.retrievalService.Retrieve(ctx.Context(), req.Query, req.TopK)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}
