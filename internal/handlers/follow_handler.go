package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/middleware"
	"github.com/srijagatheeswaran/social-media-server/internal/services"
)

type FollowHandler struct {
	svc *services.FollowService
	log *zap.SugaredLogger
}

func NewFollowHandler(svc *services.FollowService, logger *zap.SugaredLogger) *FollowHandler {
	return &FollowHandler{svc: svc, log: logger}
}

type toggleFollowReq struct {
	UserID string `json:"user_id"`
}

// Store toggles the follow edge toward the given user: follow when absent,
// unfollow when present.
func (h *FollowHandler) Store(c *fiber.Ctx) error {
	var req toggleFollowReq
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "user_id is required"})
	}
	followID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "user_id is required"})
	}
	followerID := c.Locals(middleware.LocalUserID).(primitive.ObjectID)

	followed, err := h.svc.Toggle(c.Context(), followerID, followID)
	if err != nil {
		h.log.Errorw("follow toggle failed", "follower", followerID.Hex(), "target", req.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	if followed {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Followed successfully"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Unfollowed successfully"})
}

func (h *FollowHandler) List(c *fiber.Ctx) error {
	followerID := c.Locals(middleware.LocalUserID).(primitive.ObjectID)
	feed, err := h.svc.Feed(c.Context(), followerID)
	if err != nil {
		h.log.Errorw("follow list failed", "follower", followerID.Hex(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":   "Followed users and their posts fetched successfully",
		"following": feed.Following,
		"posts":     feed.Posts,
	})
}
