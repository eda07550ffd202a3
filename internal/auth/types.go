package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// represents JWT claims; UserID is the account id
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// persists rotated oauth tokens of an account
type TokenStore interface {
	UpdateTokens(ctx context.Context, accountID, accessToken, refreshToken string, expiry time.Time) error
}
