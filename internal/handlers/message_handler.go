package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/middleware"
	"github.com/srijagatheeswaran/social-media-server/internal/services"
)

type MessageHandler struct {
	svc *services.MessageService
	log *zap.SugaredLogger
}

func NewMessageHandler(svc *services.MessageService, logger *zap.SugaredLogger) *MessageHandler {
	return &MessageHandler{svc: svc, log: logger}
}

// List returns the caller's conversation summaries, one entry per
// counterparty with the most recent message.
func (h *MessageHandler) List(c *fiber.Ctx) error {
	userID := c.Locals(middleware.LocalUserID).(primitive.ObjectID)
	conversations, err := h.svc.Conversations(c.Context(), userID)
	if err != nil {
		h.log.Errorw("conversation list failed", "user", userID.Hex(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"messages": conversations})
}

// Thread returns one page of the conversation with the user in the path.
func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	userID := c.Locals(middleware.LocalUserID).(primitive.ObjectID)
	otherID, err := primitive.ObjectIDFromHex(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid user id"})
	}
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 20))

	thread, err := h.svc.Thread(c.Context(), userID, otherID, page, limit)
	if errors.Is(err, services.ErrInvalidUser) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}
	if err != nil {
		h.log.Errorw("thread fetch failed", "user", userID.Hex(), "other", c.Params("userId"), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}

	if len(thread.Messages) == 0 {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message":   "No messages found",
			"messages":  thread.Messages,
			"otherUser": thread.OtherUser,
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"messages":  thread.Messages,
		"otherUser": thread.OtherUser,
	})
}
