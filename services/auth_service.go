package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"codepair-system/config"
	"codepair-system/internal/status"
	"codepair-system/models"
	"codepair-system/store"
	"codepair-system/utils"
)

const (
	defaultGitHubTokenURL = "https://github.com/login/oauth/access_token"
	defaultGitHubUserURL  = "https://api.github.com/user"
)

type tokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthService exchanges GitHub OAuth codes for accounts and signs the session
// tokens that guard the queue and room endpoints.
type AuthService struct {
	users  *store.MongoUserStore
	hc     *http.Client
	secret []byte
	ttl    time.Duration

	clientID     string
	clientSecret string

	// Overridable for tests.
	tokenURL string
	userURL  string
}

func NewAuthService(users *store.MongoUserStore, cfg *config.Config) *AuthService {
	return &AuthService{
		users:        users,
		hc:           &http.Client{Timeout: 10 * time.Second},
		secret:       []byte(cfg.JWTSecret),
		ttl:          cfg.TokenTTL,
		clientID:     cfg.GitHubClientID,
		clientSecret: cfg.GitHubClientSecret,
		tokenURL:     defaultGitHubTokenURL,
		userURL:      defaultGitHubUserURL,
	}
}

type githubTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// LoginWithGitHub exchanges the OAuth code, upserts the account and returns a
// signed session token alongside the stored account.
func (s *AuthService) LoginWithGitHub(ctx context.Context, code string) (string, *models.Account, error) {
	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return "", nil, err
	}

	ghUser, err := s.fetchUser(ctx, accessToken)
	if err != nil {
		return "", nil, err
	}

	account, err := s.users.UpsertAccount(ctx, models.Account{
		UserID:   strconv.FormatInt(ghUser.ID, 10),
		GitHubID: ghUser.ID,
		Name:     ghUser.Login,
		Email:    ghUser.Email,
		Avatar:   ghUser.AvatarURL,
	})
	if err != nil {
		return "", nil, err
	}

	token, err := s.SignToken(account.UserID)
	if err != nil {
		return "", nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": account.UserID, "name": account.Name}).Info("github login")
	return token, account, nil
}

// SignToken issues an HS256 session token for userID.
func (s *AuthService) SignToken(userID string) (string, error) {
	jti, err := utils.GenerateCode(8)
	if err != nil {
		return "", fmt.Errorf("token id: %w", err)
	}

	now := time.Now()
	claims := &tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates a session token and returns the user id it carries.
func (s *AuthService) ParseToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", status.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return "", status.ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *AuthService) exchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange oauth code: %w", err)
	}
	defer resp.Body.Close()

	var tokenResp githubTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("github did not return an access token")
	}
	return tokenResp.AccessToken, nil
}

func (s *AuthService) fetchUser(ctx context.Context, accessToken string) (*githubUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user endpoint returned %d", resp.StatusCode)
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode github user: %w", err)
	}
	return &user, nil
}
