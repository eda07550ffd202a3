package auth

import (
	"context"

	"codeberg.org/tubetrack/server/tubetrack/accounts"
)

// account persistence needed by the auth handlers
type AccountRepository interface {
	FindOrCreateByProvider(ctx context.Context, profile accounts.ProviderProfile) (*accounts.Account, error)
	FindByID(ctx context.Context, accountID string) (*accounts.Account, error)
}

// AuthResponse returned after successful OAuth callback
type AuthResponse struct {
	Account *accounts.Account `json:"account"`
	Token   string            `json:"token"`
}

// AccountResponse wraps account data
type AccountResponse struct {
	Account *accounts.Account `json:"account"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
