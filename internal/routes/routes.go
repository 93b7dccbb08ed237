package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/srijagatheeswaran/social-media-server/internal/handlers"
	"github.com/srijagatheeswaran/social-media-server/internal/middleware"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
	"github.com/srijagatheeswaran/social-media-server/internal/session"
	"github.com/srijagatheeswaran/social-media-server/internal/ws"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Profile *handlers.ProfileHandler
	Post    *handlers.PostHandler
	Follow  *handlers.FollowHandler
	Message *handlers.MessageHandler
	Socket  *ws.Server
}

// Setup wires every route. Everything outside /auth sits behind the
// authorization gate; /auth itself is throttled per IP.
func Setup(app *fiber.App, h Handlers, users repository.UserRepository, sessions *session.Manager, limiter *middleware.IPRateLimiter) {
	requireAuth := middleware.RequireAuth(users, sessions)

	auth := app.Group("/auth", limiter.Handler())
	auth.Post("/register", h.Auth.Register)
	auth.Post("/verify-otp", h.Auth.VerifyOTP)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/verify", h.Auth.Verify)
	auth.Post("/logout", requireAuth, h.Auth.Logout)

	profile := app.Group("/profile", requireAuth)
	profile.Get("/show", h.Profile.Show)
	profile.Post("/uploadImage", h.Profile.UploadImage)
	profile.Post("/updateUser", h.Profile.UpdateUser)
	profile.Get("/search", h.Profile.Search)
	profile.Get("/user-details", h.Profile.UserDetails)

	posts := app.Group("/posts", requireAuth)
	posts.Post("/store", h.Post.Store)
	posts.Get("/list", h.Post.List)
	posts.Get("/view", h.Post.View)
	posts.Delete("/delete", h.Post.Delete)

	follow := app.Group("/follow", requireAuth)
	follow.Post("/store", h.Follow.Store)
	follow.Get("/list", h.Follow.List)

	messages := app.Group("/messages", requireAuth)
	messages.Get("/list", h.Message.List)
	messages.Get("/:userId", h.Message.Thread)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(h.Socket.Handle()))
}
