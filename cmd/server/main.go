package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/srijagatheeswaran/social-media-server/internal/brevo"
	"github.com/srijagatheeswaran/social-media-server/internal/config"
	"github.com/srijagatheeswaran/social-media-server/internal/database"
	"github.com/srijagatheeswaran/social-media-server/internal/handlers"
	"github.com/srijagatheeswaran/social-media-server/internal/middleware"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
	"github.com/srijagatheeswaran/social-media-server/internal/routes"
	"github.com/srijagatheeswaran/social-media-server/internal/services"
	"github.com/srijagatheeswaran/social-media-server/internal/session"
	"github.com/srijagatheeswaran/social-media-server/internal/storage"
	"github.com/srijagatheeswaran/social-media-server/internal/utils"
	"github.com/srijagatheeswaran/social-media-server/internal/ws"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Env)
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()
	sugar.Infof("starting social-media-server in %s mode on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	media, err := storage.NewS3Store(context.Background(), cfg.S3.Region, cfg.S3.Bucket)
	if err != nil {
		sugar.Fatalf("s3 init failed: %v", err)
	}
	mailer := brevo.NewClient(cfg.Brevo.APIKey, cfg.Brevo.FromEmail, cfg.Brevo.FromName, sugar)

	userRepo := repository.NewMongoUserRepo(db)
	tokenRepo := repository.NewMongoTokenRepo(db, cfg.TokenTTL)
	followRepo := repository.NewMongoFollowRepo(db)
	postRepo := repository.NewMongoPostRepo(db)
	messageRepo := repository.NewMongoMessageRepo(db)

	sessions := session.NewManager(cfg.JWT.Secret, cfg.TokenTTL, tokenRepo)
	limiter := services.NewRedisOTPLimiter(rdb, cfg.Security.OTPRateLimitPerHour)

	authSvc := services.NewAuthService(userRepo, sessions, mailer, limiter, cfg.OTPTTL, cfg.Security.PasswordHashCost, sugar)
	profileSvc := services.NewProfileService(userRepo, postRepo, followRepo, media, sugar)
	postSvc := services.NewPostService(postRepo, media, sugar)
	followSvc := services.NewFollowService(followRepo, userRepo, postRepo)
	messageSvc := services.NewMessageService(messageRepo, userRepo)

	hub := ws.NewHub()
	socketSrv := ws.NewServer(hub, messageSvc, sugar)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // image payloads arrive inline
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.ClientOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, email, token",
	}))
	app.Use(middleware.RequestLogger(logger))

	ipLimiter := middleware.NewIPRateLimiter(cfg.Security.AuthRequestsPerMinute, sugar)

	routes.Setup(app, routes.Handlers{
		Auth:    handlers.NewAuthHandler(authSvc, sugar),
		Profile: handlers.NewProfileHandler(profileSvc, sugar),
		Post:    handlers.NewPostHandler(postSvc, sugar),
		Follow:  handlers.NewFollowHandler(followSvc, sugar),
		Message: handlers.NewMessageHandler(messageSvc, sugar),
		Socket:  socketSrv,
	}, userRepo, sessions, ipLimiter)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		if err := app.Listen(addr); err != nil {
			sugar.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		sugar.Errorf("http shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		sugar.Errorf("mongodb disconnect error: %v", err)
	}
	if err := rdb.Close(); err != nil {
		sugar.Errorf("redis close error: %v", err)
	}
	sugar.Info("shutdown complete")
}
