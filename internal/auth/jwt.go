package auth

import (
	"errors"
	"fmt"
	"time"

	"agriconnect/internal/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// UserClaims represents the JWT claims carried for an authenticated user.
type UserClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenConfig holds token signing configuration.
type TokenConfig struct {
	SigningKey string
	Expiry     time.Duration
}

// Tokens issues and validates HS256 JWTs.
type Tokens struct {
	config TokenConfig
}

// NewTokens creates a token utility with the given configuration.
func NewTokens(config TokenConfig) *Tokens {
	return &Tokens{config: config}
}

// Generate creates a signed token for the given user.
func (t *Tokens) Generate(user *model.User) (string, error) {
	if t.config.SigningKey == "" {
		return "", errors.New("JWT signing key not configured")
	}

	now := time.Now()
	claims := UserClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(t.config.SigningKey))
}

// Validate parses and validates a token string.
func (t *Tokens) Validate(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(t.config.SigningKey), nil
		},
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
