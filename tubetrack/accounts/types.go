package accounts

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAccountNotFound = errors.New("account not found")

// handles account database operations
type Repository struct {
	db *pgxpool.Pool
}

// represents a connected youtube account; tokens never leave the server
type Account struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Provider     string     `json:"provider"`
	ProviderID   string     `json:"-"`
	Name         string     `json:"name"`
	AvatarURL    string     `json:"avatar_url"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenExpiry  *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// profile and tokens returned by the oauth provider
type ProviderProfile struct {
	Provider     string
	ProviderID   string
	Email        string
	Name         string
	AvatarURL    string
	AccessToken  string
	RefreshToken string
	TokenExpiry  *time.Time
}
