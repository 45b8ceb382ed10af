package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"codepair-system/internal/status"
	"codepair-system/models"
	"codepair-system/store"
)

type DomainHandler struct {
	domains *store.MongoDomainStore
}

func NewDomainHandler(domains *store.MongoDomainStore) *DomainHandler {
	return &DomainHandler{domains: domains}
}

func (h *DomainHandler) CreateDomain(c echo.Context) error {
	var req models.Domain
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	err := h.domains.CreateDomain(c.Request().Context(), req)
	if errors.Is(err, status.ErrDomainExists) {
		return echo.NewHTTPError(http.StatusBadRequest, "Domain already exists")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to create domain")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Domain created"})
}

func (h *DomainHandler) ListDomains(c echo.Context) error {
	domains, err := h.domains.ListDomains(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to list domains")
	}
	return c.JSON(http.StatusOK, domains)
}

func (h *DomainHandler) CreateRoomType(c echo.Context) error {
	var req models.RoomType
	if err := c.Bind(&req); err != nil || req.Name == "" || req.DomainName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and domain_name are required")
	}

	if err := h.domains.CreateRoomType(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to create room type")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Room type created"})
}

func (h *DomainHandler) ListRoomTypes(c echo.Context) error {
	roomTypes, err := h.domains.ListRoomTypes(c.Request().Context(), c.QueryParam("domain"))
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Failed to list room types")
	}
	return c.JSON(http.StatusOK, roomTypes)
}
