package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/middleware"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
	"github.com/srijagatheeswaran/social-media-server/internal/services"
	"github.com/srijagatheeswaran/social-media-server/internal/utils"
)

type PostHandler struct {
	svc *services.PostService
	log *zap.SugaredLogger
}

func NewPostHandler(svc *services.PostService, logger *zap.SugaredLogger) *PostHandler {
	return &PostHandler{svc: svc, log: logger}
}

type createPostReq struct {
	Title string `json:"title" validate:"required,max=200"`
	Image string `json:"image" validate:"required"`
}

func (h *PostHandler) Store(c *fiber.Ctx) error {
	var req createPostReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if ve := utils.ValidateStruct(&req); ve != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": ve})
	}

	ownerID := c.Locals(middleware.LocalUserID).(primitive.ObjectID)
	post, err := h.svc.Create(c.Context(), ownerID, req.Title, req.Image)
	if err != nil {
		h.log.Errorw("post create failed", "owner", ownerID.Hex(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post created successfully", "post": post})
}

func (h *PostHandler) List(c *fiber.Ctx) error {
	ownerID := c.Locals(middleware.LocalUserID).(primitive.ObjectID)
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 20))

	posts, totalPages, err := h.svc.List(c.Context(), ownerID, page, limit)
	if err != nil {
		h.log.Errorw("post list failed", "owner", ownerID.Hex(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message":    "Post fetched successfully",
		"Posts":      posts,
		"totalPages": totalPages,
	})
}

type postIDReq struct {
	PostID string `json:"post_id" validate:"required"`
}

func (h *PostHandler) View(c *fiber.Ctx) error {
	var req postIDReq
	if err := c.BodyParser(&req); err != nil || req.PostID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Post ID is required"})
	}
	id, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Post ID is required"})
	}

	post, err := h.svc.View(c.Context(), id)
	if errors.Is(err, repository.ErrPostNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Post not found"})
	}
	if err != nil {
		h.log.Errorw("post view failed", "post", req.PostID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post fetched successfully", "Posts": post})
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	var req postIDReq
	if err := c.BodyParser(&req); err != nil || req.PostID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Post ID is required"})
	}
	id, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Post ID is required"})
	}

	post, err := h.svc.Delete(c.Context(), id)
	if errors.Is(err, repository.ErrPostNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Post not found"})
	}
	if err != nil {
		h.log.Errorw("post delete failed", "post", req.PostID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post deleted successfully", "Posts": post})
}
