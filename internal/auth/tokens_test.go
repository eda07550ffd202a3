package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/tubetrack/server/internal/config"
	"codeberg.org/tubetrack/server/tubetrack/accounts"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type recordingStore struct {
	calls []string
	err   error
}

func (r *recordingStore) UpdateTokens(_ context.Context, accountID, accessToken, _ string, _ time.Time) error {
	r.calls = append(r.calls, accountID+":"+accessToken)
	return r.err
}

type sequenceSource struct {
	tokens []string
	i      int
}

func (s *sequenceSource) Token() (*oauth2.Token, error) {
	token := &oauth2.Token{AccessToken: s.tokens[s.i]}
	if s.i < len(s.tokens)-1 {
		s.i++
	}

	return token, nil
}

func TestPersistingTokenSource_PersistsOnlyRotations(t *testing.T) {
	store := &recordingStore{}
	base := &sequenceSource{tokens: []string{"initial", "initial", "rotated", "rotated"}}

	ts := newPersistingTokenSource(base, store, "acc-1", &oauth2.Token{AccessToken: "initial"})

	for i := 0; i < 4; i++ {
		_, err := ts.Token()
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"acc-1:rotated"}, store.calls)
}

func TestPersistingTokenSource_StoreFailureKeepsToken(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	base := &sequenceSource{tokens: []string{"fresh"}}

	ts := newPersistingTokenSource(base, store, "acc-1", &oauth2.Token{AccessToken: "stale"})

	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)
}

func TestTokenSources_UsesValidStoredToken(t *testing.T) {
	store := &recordingStore{}
	sources := NewTokenSources(OAuthConfig(&config.Config{GoogleClientID: "id"}), store)

	expiry := time.Now().Add(time.Hour)
	account := &accounts.Account{ID: "acc-1", AccessToken: "stored", TokenExpiry: &expiry}

	token, err := sources.For(context.Background(), account).Token()
	require.NoError(t, err)
	assert.Equal(t, "stored", token.AccessToken)
	assert.Empty(t, store.calls)
}

func TestCallbackURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/api/v1/auth/google/callback", CallbackURL(""))
	assert.Equal(t, "https://tt.example.com/api/v1/auth/google/callback", CallbackURL("https://tt.example.com/"))
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing")

	router := gin.New()
	router.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id)
	})

	token, err := GenerateJWT("acc-1", "me@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "acc-1", w.Body.String())
			}
		})
	}
}
