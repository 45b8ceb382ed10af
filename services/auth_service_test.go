package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codepair-system/internal/status"
)

func newTestAuthService() *AuthService {
	return &AuthService{
		hc:           &http.Client{Timeout: time.Second},
		secret:       []byte("test-secret"),
		ttl:          time.Hour,
		clientID:     "client-id",
		clientSecret: "client-secret",
	}
}

func TestSignAndParseToken(t *testing.T) {
	auth := newTestAuthService()

	token, err := auth.SignToken("12345")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := auth.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "12345", userID)
}

func TestParseToken_Garbage(t *testing.T) {
	auth := newTestAuthService()

	_, err := auth.ParseToken("not-a-token")

	assert.ErrorIs(t, err, status.ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	auth := newTestAuthService()
	other := newTestAuthService()
	other.secret = []byte("different-secret")

	token, err := other.SignToken("12345")
	require.NoError(t, err)

	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, status.ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	auth := newTestAuthService()
	auth.ttl = -time.Minute

	token, err := auth.SignToken("12345")
	require.NoError(t, err)

	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, status.ErrInvalidToken)
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		assert.Equal(t, "client-secret", r.FormValue("client_secret"))
		assert.Equal(t, "oauth-code", r.FormValue("code"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gh-token"}`))
	}))
	defer srv.Close()

	auth := newTestAuthService()
	auth.tokenURL = srv.URL

	accessToken, err := auth.exchangeCode(context.Background(), "oauth-code")

	assert.NoError(t, err)
	assert.Equal(t, "gh-token", accessToken)
}

func TestExchangeCode_NoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"bad_verification_code"}`))
	}))
	defer srv.Close()

	auth := newTestAuthService()
	auth.tokenURL = srv.URL

	_, err := auth.exchangeCode(context.Background(), "expired-code")

	assert.Error(t, err)
}

func TestFetchUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token gh-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"login":"octocat","email":"octo@example.com","avatar_url":"https://example.com/a.png"}`))
	}))
	defer srv.Close()

	auth := newTestAuthService()
	auth.userURL = srv.URL

	user, err := auth.fetchUser(context.Background(), "gh-token")

	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, "octo@example.com", user.Email)
}

func TestFetchUser_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	auth := newTestAuthService()
	auth.userURL = srv.URL

	_, err := auth.fetchUser(context.Background(), "bad-token")

	assert.Error(t, err)
}
