package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/middleware"
	"github.com/srijagatheeswaran/social-media-server/internal/services"
	"github.com/srijagatheeswaran/social-media-server/internal/utils"
)

type ProfileHandler struct {
	svc *services.ProfileService
	log *zap.SugaredLogger
}

func NewProfileHandler(svc *services.ProfileService, logger *zap.SugaredLogger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: logger}
}

func (h *ProfileHandler) Show(c *fiber.Ctx) error {
	email := c.Locals(middleware.LocalEmail).(string)
	view, err := h.svc.Show(c.Context(), email)
	if errors.Is(err, services.ErrInvalidUser) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}
	if err != nil {
		h.log.Errorw("profile show failed", "email", email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

type uploadImageReq struct {
	Email string `json:"email" validate:"required,email"`
	Image string `json:"image" validate:"required"`
}

func (h *ProfileHandler) UploadImage(c *fiber.Ctx) error {
	var req uploadImageReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if ve := utils.ValidateStruct(&req); ve != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and image are required", "errors": ve})
	}

	if err := h.svc.UploadImage(c.Context(), req.Email, req.Image); err != nil {
		if errors.Is(err, services.ErrInvalidUser) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		h.log.Errorw("image upload failed", "email", req.Email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Image uploaded successfully"})
}

type updateUserReq struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"omitempty,min=3,max=30"`
	Gender string `json:"gender" validate:"omitempty,oneof=male female other"`
	Bio    string `json:"bio" validate:"omitempty,max=200"`
}

func (h *ProfileHandler) UpdateUser(c *fiber.Ctx) error {
	var req updateUserReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if ve := utils.ValidateStruct(&req); ve != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": ve})
	}

	user, err := h.svc.UpdateUser(c.Context(), req.Email, req.Name, req.Gender, req.Bio)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Details updated successfully", "user": user})
	case errors.Is(err, services.ErrNoFields):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No fields provided to update."})
	case errors.Is(err, services.ErrUsernameTaken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Username is already taken."})
	case errors.Is(err, services.ErrInvalidUser):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found."})
	default:
		h.log.Errorw("profile update failed", "email", req.Email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
}

func (h *ProfileHandler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Query is required"})
	}
	viewerID := c.Locals(middleware.LocalUserID).(primitive.ObjectID)

	users, err := h.svc.Search(c.Context(), viewerID, query)
	if err != nil {
		h.log.Errorw("user search failed", "query", query, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"users": users})
}

func (h *ProfileHandler) UserDetails(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email is required"})
	}
	viewerEmail := c.Get("email")
	if viewerEmail == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Viewer email is required"})
	}

	details, err := h.svc.UserDetails(c.Context(), email, viewerEmail)
	if errors.Is(err, services.ErrInvalidUser) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}
	if err != nil {
		h.log.Errorw("user details failed", "email", email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(details)
}
