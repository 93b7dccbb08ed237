package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/srijagatheeswaran/social-media-server/internal/repository"
	"github.com/srijagatheeswaran/social-media-server/internal/session"
)

// Locals keys set for handlers once the gate passes.
const (
	LocalUserID = "userID"
	LocalEmail  = "email"
)

// RequireAuth is the authorization gate in front of every protected route.
// The identity claim arrives as an `email` header plus a `token` header; the
// gate requires a known, verified user holding a valid live session, and
// rejects with a distinct reason at each step.
func RequireAuth(users repository.UserRepository, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := c.Get("email")
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: No email provided"})
		}

		user, err := users.FindByEmail(c.Context(), email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "User not found"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Server error"})
		}

		if !user.IsVerified {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "User not verified"})
		}

		token := c.Get("token")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized: No token provided"})
		}

		userID, err := sessions.Verify(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or Expired Token"})
		}
		if userID != user.ID {
			// valid session, but not this user's
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid Token"})
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalEmail, user.Email)
		return c.Next()
	}
}
