package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"codepair-system/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GitHubLogin exchanges a GitHub OAuth code for a session token.
func (h *AuthHandler) GitHubLogin(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}

	token, account, err := h.authService.LoginWithGitHub(c.Request().Context(), req.Code)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "GitHub login failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"user_id": account.UserID,
			"name":    account.Name,
			"avatar":  account.Avatar,
		},
	})
}
