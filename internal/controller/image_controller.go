package controller

import (
	"errors"

	"tigaraksa-chat-be/internal/dto"
	"tigaraksa-chat-be/internal/pkg/logger"
	"tigaraksa-chat-be/internal/pkg/serverutils"
	"tigaraksa-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SessionCounter reports live chat websocket sessions.
type SessionCounter interface {
	Count() int
}

type IImageController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	ListAll(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type imageController struct {
	images   service.IImageService
	chat     service.IChatService
	sessions SessionCounter
	logger   logger.ILogger
}

func NewImageController(images service.IImageService, chat service.IChatService, sessions SessionCounter, log logger.ILogger) IImageController {
	return &imageController{images: images, chat: chat, sessions: sessions, logger: log}
}

func (c *imageController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Get("/images", c.ListAll)
	r.Get("/search", c.Search)
}

func (c *imageController) Health(ctx *fiber.Ctx) error {
	res := dto.HealthResponse{
		Status:      "API is running",
		Database:    "ok",
		ChatEnabled: c.chat.Enabled(),
	}
	if c.sessions != nil {
		res.ChatSockets = c.sessions.Count()
	}
	if err := c.images.Ping(ctx.UserContext()); err != nil {
		c.logger.Warn("ImageController", "Database ping failed", map[string]interface{}{"error": err.Error()})
		res.Database = "unreachable"
	}
	return ctx.JSON(res)
}

func (c *imageController) ListAll(ctx *fiber.Ctx) error {
	res, err := c.images.ListAll(ctx.UserContext())
	if err != nil {
		c.logger.Error("ImageController", "Failed to list images", map[string]interface{}{"error": err.Error()})
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Failed to fetch images"))
	}
	return ctx.JSON(res)
}

func (c *imageController) Search(ctx *fiber.Ctx) error {
	res, err := c.images.Search(ctx.UserContext(), ctx.Query("q"))
	if errors.Is(err, service.ErrEmptyQuery) {
		return fiber.NewError(fiber.StatusBadRequest, "Query parameter 'q' is required")
	}
	if err != nil {
		c.logger.Error("ImageController", "Search failed", map[string]interface{}{"error": err.Error(), "query": ctx.Query("q")})
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, "Search failed"))
	}
	return ctx.JSON(res)
}
