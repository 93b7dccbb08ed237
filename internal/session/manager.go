package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/srijagatheeswaran/social-media-server/internal/repository"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims bind a session token to a user id and email.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens. A user holds at most one live
// session: Issue upserts the tokens collection by user id, so each login
// replaces the previous token, and Verify requires the presented token to
// still be the stored one. A cryptographically valid token superseded by a
// newer login therefore fails verification.
type Manager struct {
	secret []byte
	ttl    time.Duration
	tokens repository.TokenRepository
}

func NewManager(secret string, ttl time.Duration, tokens repository.TokenRepository) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, tokens: tokens}
}

// Issue mints a signed token for the user and persists it as the sole active
// session.
func (m *Manager) Issue(ctx context.Context, userID primitive.ObjectID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID.Hex(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := m.tokens.Upsert(ctx, userID, signed); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return signed, nil
}

// Verify validates signature and expiry, then checks the token against the
// stored active session for that user.
func (m *Manager) Verify(ctx context.Context, tokenStr string) (primitive.ObjectID, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return primitive.NilObjectID, err
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}

	stored, err := m.tokens.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return primitive.NilObjectID, ErrInvalidToken
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	if stored.Token != tokenStr {
		// superseded by a newer login
		return primitive.NilObjectID, ErrInvalidToken
	}
	return userID, nil
}

// Revoke deletes the stored session record for the token.
func (m *Manager) Revoke(ctx context.Context, tokenStr string) error {
	return m.tokens.DeleteByToken(ctx, tokenStr)
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
