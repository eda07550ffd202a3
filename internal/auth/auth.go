package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"codeberg.org/tubetrack/server/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	yt "google.golang.org/api/youtube/v3"
)

const tokenLifetime = 7 * 24 * time.Hour

// scopes requested from google: identity plus read access to the channel
var Scopes = []string{"email", "profile", yt.YoutubeReadonlyScope}

// sets up the google OAuth provider using goth
func InitializeProviders(cfg *config.Config) error {
	if cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must be set")
	}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	// cookie only lives for the OAuth redirect round trip
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.BaseURL, "https://"),
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	provider := google.New(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		CallbackURL(cfg.BaseURL),
		Scopes...,
	)

	// offline access so the scheduler can refresh tokens without the user
	provider.SetAccessType("offline")
	provider.SetPrompt("consent")

	goth.UseProviders(provider)
	return nil
}

func CallbackURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return strings.TrimSuffix(baseURL, "/") + "/api/v1/auth/google/callback"
}

// oauth2 config matching the goth provider, used to refresh stored tokens
func OAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  CallbackURL(cfg.BaseURL),
		Endpoint:     googleoauth.Endpoint,
		Scopes:       Scopes,
	}
}

// creates a JWT token for the account
func GenerateJWT(userID, email string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET not set")
	}

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// validates a JWT token and returns the claims
func ValidateJWT(tokenString string) (*Claims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
