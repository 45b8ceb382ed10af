package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"codepair-system/internal/status"
	"codepair-system/security"
	"codepair-system/services"
)

type QueueHandler struct {
	queueService *services.QueueService
}

func NewQueueHandler(queueService *services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// Enqueue puts the authenticated user into the (domain, room_type) queue.
func (h *QueueHandler) Enqueue(c echo.Context) error {
	userID := security.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req struct {
		Domain   string `json:"domain"`
		RoomType string `json:"room_type"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if req.Domain == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "domain is required")
	}

	ctx := c.Request().Context()
	accepted, err := h.queueService.Enqueue(ctx, req.Domain, req.RoomType, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to join queue")
	}

	length, _ := h.queueService.Length(ctx, req.Domain, req.RoomType)
	return c.JSON(http.StatusOK, map[string]any{
		"accepted":     accepted,
		"queue_length": length,
	})
}

// Length reports how many users are waiting in a queue.
func (h *QueueHandler) Length(c echo.Context) error {
	domain := c.QueryParam("domain")
	if domain == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "domain is required")
	}

	length, err := h.queueService.Length(c.Request().Context(), domain, c.QueryParam("room_type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to read queue length")
	}

	return c.JSON(http.StatusOK, map[string]any{"queue_length": length})
}

// Position reports the authenticated user's 1-based place in a queue.
func (h *QueueHandler) Position(c echo.Context) error {
	userID := security.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	domain := c.QueryParam("domain")
	if domain == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "domain is required")
	}

	position, err := h.queueService.Position(c.Request().Context(), domain, c.QueryParam("room_type"), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to read queue position")
	}

	return c.JSON(http.StatusOK, map[string]any{"position": position})
}

// Leave removes the authenticated user from a queue.
func (h *QueueHandler) Leave(c echo.Context) error {
	userID := security.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req struct {
		Domain   string `json:"domain"`
		RoomType string `json:"room_type"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	err := h.queueService.Leave(c.Request().Context(), req.Domain, req.RoomType, userID)
	if errors.Is(err, status.ErrNotQueued) {
		return echo.NewHTTPError(http.StatusNotFound, "Not in queue")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to leave queue")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Left queue"})
}
