package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/srijagatheeswaran/social-media-server/internal/services"
	"github.com/srijagatheeswaran/social-media-server/internal/utils"
)

type AuthHandler struct {
	svc *services.AuthService
	log *zap.SugaredLogger
}

func NewAuthHandler(svc *services.AuthService, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{svc: svc, log: logger}
}

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if ve := utils.ValidateStruct(&req); ve != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": ve})
	}

	err := h.svc.Register(c.Context(), req.Username, req.Email, req.Password)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "OTP sent to email", "email": req.Email})
	case errors.Is(err, services.ErrEmailExists):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email already exists"})
	case errors.Is(err, services.ErrUsernameExists):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Username already exists"})
	case errors.Is(err, services.ErrOTPRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many OTP requests, try again later"})
	case errors.Is(err, services.ErrEmailDispatch):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Failed to send verification email"})
	default:
		h.log.Errorw("registration failed", "email", req.Email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error registering user"})
	}
}

type verifyOTPReq struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if ve := utils.ValidateStruct(&req); ve != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": ve})
	}

	token, userID, err := h.svc.VerifyOTP(c.Context(), req.Email, req.OTP)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "User verified successfully", "token": token, "id": userID})
	case errors.Is(err, services.ErrInvalidUser):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "User not found"})
	case errors.Is(err, services.ErrInvalidOTP):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid or expired OTP"})
	default:
		h.log.Errorw("otp verification failed", "email", req.Email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Error verifying OTP"})
	}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if ve := utils.ValidateStruct(&req); ve != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": ve})
	}

	token, userID, err := h.svc.Login(c.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Login successful!", "token": token, "email": req.Email, "id": userID})
	case errors.Is(err, services.ErrInvalidUser):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid User"})
	case errors.Is(err, services.ErrInvalidPassword):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid password"})
	case errors.Is(err, services.ErrVerificationRequired):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Please verify your email first. OTP sent!", "email": req.Email})
	case errors.Is(err, services.ErrOTPRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many OTP requests, try again later"})
	default:
		h.log.Errorw("login failed", "email", req.Email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
}

type verifyTokenReq struct {
	Email string `json:"email" validate:"required,email"`
}

// Verify answers "is this email+token pair a live session" for clients
// restoring state.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req verifyTokenReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if ve := utils.ValidateStruct(&req); ve != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": ve})
	}

	token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	valid := token != "" && h.svc.VerifyToken(c.Context(), req.Email, token)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"valid": valid})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := c.Get("token")
	if err := h.svc.Logout(c.Context(), token); err != nil {
		h.log.Errorw("logout failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Logged out successfully!"})
}
