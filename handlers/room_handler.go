package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"codepair-system/internal/status"
	"codepair-system/security"
	"codepair-system/services"
)

type RoomHandler struct {
	roomService *services.RoomService
}

func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CurrentRoom returns the active room seating the authenticated user. Waiting
// clients poll this until their room is formed.
func (h *RoomHandler) CurrentRoom(c echo.Context) error {
	userID := security.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	room, err := h.roomService.CurrentRoom(c.Request().Context(), userID)
	if errors.Is(err, status.ErrRoomNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Room not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to look up room")
	}

	return c.JSON(http.StatusOK, room)
}

// Leave removes the authenticated user from a room.
func (h *RoomHandler) Leave(c echo.Context) error {
	userID := security.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req struct {
		RoomID string `json:"room_id"`
	}
	if err := c.Bind(&req); err != nil || req.RoomID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "room_id is required")
	}

	err := h.roomService.Leave(c.Request().Context(), req.RoomID, userID)
	if errors.Is(err, status.ErrRoomNotFound) || errors.Is(err, status.ErrUserNotInRoom) {
		return echo.NewHTTPError(http.StatusNotFound, "Room or user not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to leave room")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Left room"})
}

// Complete marks a room's challenge as finished and records the winner.
func (h *RoomHandler) Complete(c echo.Context) error {
	userID := security.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req struct {
		RoomID   string `json:"room_id"`
		WinnerID string `json:"winner_id"`
	}
	if err := c.Bind(&req); err != nil || req.RoomID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "room_id is required")
	}

	err := h.roomService.Complete(c.Request().Context(), req.RoomID, req.WinnerID)
	if errors.Is(err, status.ErrRoomNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Room not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to complete room")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Room completed"})
}
