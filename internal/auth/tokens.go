package auth

import (
	"context"
	"sync"
	"time"

	"codeberg.org/tubetrack/server/internal/logger"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"golang.org/x/oauth2"
)

// TokenSources builds per-account oauth2 token sources that write
// refreshed tokens back to the account store.
type TokenSources struct {
	oauth *oauth2.Config
	store TokenStore
}

func NewTokenSources(oauth *oauth2.Config, store TokenStore) *TokenSources {
	return &TokenSources{
		oauth: oauth,
		store: store,
	}
}

// returns the token source of an account. refreshes outlive the request
// that created the source, so ctx cancellation is dropped.
func (t *TokenSources) For(ctx context.Context, account *accounts.Account) oauth2.TokenSource {
	token := &oauth2.Token{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
		TokenType:    "Bearer",
	}

	if account.TokenExpiry != nil {
		token.Expiry = *account.TokenExpiry
	}

	return newPersistingTokenSource(
		t.oauth.TokenSource(context.WithoutCancel(ctx), token),
		t.store,
		account.ID,
		token,
	)
}

type persistingTokenSource struct {
	base      oauth2.TokenSource
	store     TokenStore
	accountID string

	mu   sync.Mutex
	last string
}

func newPersistingTokenSource(base oauth2.TokenSource, store TokenStore, accountID string, initial *oauth2.Token) *persistingTokenSource {
	return &persistingTokenSource{
		base:      base,
		store:     store,
		accountID: accountID,
		last:      initial.AccessToken,
	}
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token.AccessToken == s.last {
		return token, nil
	}

	s.last = token.AccessToken

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.UpdateTokens(ctx, s.accountID, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
		// the fresh token still works for this process
		logger.Warn("failed to persist refreshed token",
			"account_id", s.accountID,
			"error", err,
		)
	}

	return token, nil
}
