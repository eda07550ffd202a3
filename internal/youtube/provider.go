package youtube

import (
	"context"
	"time"

	"codeberg.org/tubetrack/server/internal/kvstore"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"golang.org/x/oauth2"
)

// builds an API client for an account
type Factory interface {
	ForAccount(ctx context.Context, account *accounts.Account) (API, error)
}

// returns a token source that authorizes calls as account
type TokenSourceFunc func(ctx context.Context, account *accounts.Account) oauth2.TokenSource

// Provider is the production Factory: an oauth-authorized client wrapped in
// the listing cache.
type Provider struct {
	tokens TokenSourceFunc
	kv     kvstore.Store
	ttl    time.Duration
}

func NewProvider(tokens TokenSourceFunc, kv kvstore.Store, ttl time.Duration) *Provider {
	return &Provider{
		tokens: tokens,
		kv:     kv,
		ttl:    ttl,
	}
}

func (p *Provider) ForAccount(ctx context.Context, account *accounts.Account) (API, error) {
	client, err := NewClient(ctx, p.tokens(ctx, account))
	if err != nil {
		return nil, err
	}

	return NewCachedClient(client, p.kv, account.ID, p.ttl), nil
}
