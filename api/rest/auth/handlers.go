package auth

import (
	stderrors "errors"
	"net/http"
	"slices"

	"codeberg.org/tubetrack/server/internal/auth"
	"codeberg.org/tubetrack/server/internal/errors"
	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

var validProviders = []string{"google"}

// BeginAuthHandler godoc
// @Summary Start OAuth authentication
// @Description Begin the Google OAuth flow, requesting read access to the user's YouTube channel
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google)
// @Success 302 {string} string "Redirect to OAuth provider"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider} [get]
func BeginAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !isValidProvider(provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		setProviderQuery(c, provider)
		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// CallbackHandler godoc
// @Summary OAuth callback
// @Description OAuth provider callback. Stores the channel tokens and returns the account with a JWT
// @Tags auth
// @Produce json
// @Param provider path string true "OAuth provider" Enums(google)
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider}/callback [get]
func CallbackHandler(accountRepo AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !isValidProvider(provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		setProviderQuery(c, provider)

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			errors.InternalError(c, "authentication failed", err)
			return
		}

		account, err := accountRepo.FindOrCreateByProvider(c.Request.Context(), profileFromGoth(gothUser))
		if err != nil {
			errors.InternalError(c, "failed to create account", err)
			return
		}

		token, err := auth.GenerateJWT(account.ID, account.Email)
		if err != nil {
			errors.InternalError(c, "failed to generate token", err)
			return
		}

		logger.Info("account signed in", "account_id", account.ID, "provider", provider)

		c.JSON(http.StatusOK, AuthResponse{
			Account: account,
			Token:   token,
		})
	}
}

// GetCurrentAccountHandler godoc
// @Summary Get current account
// @Description Get the authenticated account's profile
// @Tags auth
// @Produce json
// @Success 200 {object} AccountResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentAccountHandler(accountRepo AccountRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		account, err := accountRepo.FindByID(c.Request.Context(), accountID)
		if err != nil {
			if stderrors.Is(err, accounts.ErrAccountNotFound) {
				errors.NotFound(c, "account")
				return
			}

			errors.InternalError(c, "failed to load account", err)
			return
		}

		c.JSON(http.StatusOK, AccountResponse{Account: account})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Clear the OAuth session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/auth/logout [post]
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gothic.Logout(c.Writer, c.Request); err != nil {
			logger.ErrorErr(err, "failed to clear gothic session")
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}

func isValidProvider(provider string) bool {
	return slices.Contains(validProviders, provider)
}

// gothic reads the provider from the query string
func setProviderQuery(c *gin.Context, provider string) {
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
}

func profileFromGoth(user goth.User) accounts.ProviderProfile {
	profile := accounts.ProviderProfile{
		Provider:     user.Provider,
		ProviderID:   user.UserID,
		Email:        user.Email,
		Name:         user.Name,
		AvatarURL:    user.AvatarURL,
		AccessToken:  user.AccessToken,
		RefreshToken: user.RefreshToken,
	}

	if !user.ExpiresAt.IsZero() {
		expiry := user.ExpiresAt.UTC()
		profile.TokenExpiry = &expiry
	}

	if profile.Name == "" {
		profile.Name = user.NickName
	}

	return profile
}
