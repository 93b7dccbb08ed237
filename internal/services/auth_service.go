package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/srijagatheeswaran/social-media-server/internal/models"
	"github.com/srijagatheeswaran/social-media-server/internal/repository"
	"github.com/srijagatheeswaran/social-media-server/internal/utils"
)

const otpLength = 6

// Mailer dispatches verification codes. Satisfied by brevo.Client.
type Mailer interface {
	SendOTPEmail(ctx context.Context, toEmail, code string) error
}

// TokenIssuer is the session lifecycle the auth flow depends on. Satisfied
// by session.Manager.
type TokenIssuer interface {
	Issue(ctx context.Context, userID primitive.ObjectID, email string) (string, error)
	Verify(ctx context.Context, token string) (primitive.ObjectID, error)
	Revoke(ctx context.Context, token string) error
}

type AuthService struct {
	users    repository.UserRepository
	sessions TokenIssuer
	mailer   Mailer
	limiter  OTPLimiter
	otpTTL   time.Duration
	hashCost int
	log      *zap.SugaredLogger
}

func NewAuthService(
	users repository.UserRepository,
	sessions TokenIssuer,
	mailer Mailer,
	limiter OTPLimiter,
	otpTTL time.Duration,
	hashCost int,
	logger *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		limiter:  limiter,
		otpTTL:   otpTTL,
		hashCost: hashCost,
		log:      logger,
	}
}

// Register creates an unverified user and emails them an OTP. If the email
// cannot be delivered the user record is deleted again: an account nobody can
// verify must not be left behind.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("check existing email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return ErrUsernameExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("check existing username: %w", err)
	}

	if err := s.limiter.Allow(ctx, email); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	otp := utils.GenerateOTP(otpLength)
	expires := time.Now().Add(s.otpTTL)
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsVerified:   false,
		OTP:          otp,
		OTPExpires:   &expires,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	if err := s.mailer.SendOTPEmail(ctx, user.Email, otp); err != nil {
		// compensating delete, registration must not strand an
		// unverifiable account
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.log.Errorw("failed to roll back user after email failure",
				"user", user.ID.Hex(), "error", delErr)
		}
		return fmt.Errorf("%w: %v", ErrEmailDispatch, err)
	}
	return nil
}

// VerifyOTP confirms the emailed code, marks the user verified and issues a
// session token. Verification doubles as the first login.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (token string, userID string, err error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", "", ErrInvalidUser
	}
	if err != nil {
		return "", "", fmt.Errorf("find user: %w", err)
	}

	if user.OTP == "" || user.OTP != otp || user.OTPExpires == nil || !time.Now().Before(*user.OTPExpires) {
		return "", "", ErrInvalidOTP
	}

	if err := s.users.ClearOTPAndVerify(ctx, user.ID); err != nil {
		return "", "", fmt.Errorf("mark verified: %w", err)
	}

	token, err = s.sessions.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}
	return token, user.ID.Hex(), nil
}

// Login checks credentials. An unverified user never gets a token; instead a
// fresh OTP is generated and sent, and ErrVerificationRequired is returned.
func (s *AuthService) Login(ctx context.Context, email, password string) (token string, userID string, err error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", "", ErrInvalidUser
	}
	if err != nil {
		return "", "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", ErrInvalidPassword
	}

	if !user.IsVerified {
		if err := s.resendOTP(ctx, user); err != nil {
			return "", "", err
		}
		return "", "", ErrVerificationRequired
	}

	token, err = s.sessions.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return "", "", fmt.Errorf("issue token: %w", err)
	}
	return token, user.ID.Hex(), nil
}

// VerifyToken reports whether the presented token is the live session of the
// user owning the given email.
func (s *AuthService) VerifyToken(ctx context.Context, email, token string) bool {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return false
	}
	userID, err := s.sessions.Verify(ctx, token)
	if err != nil {
		return false
	}
	return userID == user.ID
}

// Logout revokes the presented session token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func (s *AuthService) resendOTP(ctx context.Context, user *models.User) error {
	if err := s.limiter.Allow(ctx, user.Email); err != nil {
		return err
	}
	otp := utils.GenerateOTP(otpLength)
	expires := time.Now().Add(s.otpTTL)
	if err := s.users.SetOTP(ctx, user.ID, otp, expires); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	if err := s.mailer.SendOTPEmail(ctx, user.Email, otp); err != nil {
		return fmt.Errorf("%w: %v", ErrEmailDispatch, err)
	}
	return nil
}
