package controller

import (
	"bufio"
	"errors"

	"tigaraksa-chat-be/internal/dto"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/internal/pkg/serverutils"
	"tigaraksa-chat-be/internal/service"
	"tigaraksa-chat-be/pkg/rag/persona"
	"tigaraksa-chat-be/pkg/rag/pipeline"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	logger  logger.ILogger
}

func NewChatController(service service.IChatService, log logger.ILogger) IChatController {
	return &chatController{service: service, logger: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
}

// Chat answers one turn as chunked text/plain. Fragments are flushed as they
// are produced; a failed write stops iteration, which aborts the upstream call.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	fragments, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		return chatError(err)
	}

	ctx.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for fragment := range fragments {
			if _, err := w.WriteString(fragment); err != nil {
				c.logger.Warn("ChatController", "Client went away mid-stream", map[string]interface{}{"error": err.Error()})
				return
			}
			if err := w.Flush(); err != nil {
				c.logger.Warn("ChatController", "Client went away mid-stream", map[string]interface{}{"error": err.Error()})
				return
			}
		}
	})
	return nil
}

func chatError(err error) error {
	switch {
	case errors.Is(err, service.ErrChatDisabled):
		return fiber.NewError(fiber.StatusServiceUnavailable, pipeline.MsgChatDisabled)
	case errors.Is(err, persona.ErrUnknownRole):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid role. Must be one of: Profesor, Kakak Pintar, Teman Baik, Sang Penjelajah")
	default:
		return err
	}
}
