package controller

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"rag-chat-be/internal/dto"
	"rag-chat-be/internal/pkg/apperrors"
	"rag-chat-be/internal/pkg/serverutils"
	"rag-chat-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.Chat)
	h.Get("history", c.History)
	h.Delete("history", c.ClearHistory)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.NewValidation(http.StatusBadRequest, "invalid_body", "Request body must be valid JSON")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.Context(), req.SessionId, req.UserInput)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionID := ctx.Query("session_id")
	if sessionID == "" {
		return apperrors.NewValidation(http.StatusBadRequest, "invalid_session_id", "session_id query parameter is required")
	}

	turns, err := c.chatService.History(ctx.Context(), sessionID)
	if err != nil {
		return err
	}

	res := dto.HistoryResponse{
		SessionId: sessionID,
		History:   make([]dto.HistoryTurn, 0, len(turns)),
	}
	for _, t := range turns {
		res.History = append(res.History, dto.HistoryTurn{
			Role:      t.Role,
			Content:   t.Content,
			CreatedAt: t.CreatedAt,
			Duration:  t.Duration,
		})
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	sessionID := ctx.Query("session_id")
	if sessionID == "" {
		return apperrors.NewValidation(http.StatusBadRequest, "invalid_session_id", "session_id query parameter is required")
	}

	if err := c.chatService.ClearHistory(ctx.Context(), sessionID); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("History cleared", nil))
}
