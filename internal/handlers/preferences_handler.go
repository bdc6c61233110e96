package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/userswatch/backend/internal/models"
	"github.com/anonto42/userswatch/backend/internal/watchlist"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PreferencesHandler reads and writes the "allow being watched" opt-in
type PreferencesHandler struct {
	store *watchlist.Store
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(store *watchlist.Store) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// RegisterPreferencesRoutes registers preference routes
func (h *PreferencesHandler) RegisterPreferencesRoutes(g *echo.Group) {
	g.GET("/preferences/userswatch", h.GetPreference)
	g.PUT("/preferences/userswatch", h.UpdatePreference)
}

// GetPreference returns the opt-in; allow_all tells clients to hide the toggle
func (h *PreferencesHandler) GetPreference(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	locked := h.store.AllowAll()
	allow, err := h.store.AllowFollow(c.Request().Context(), currentUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"allow_follow": allow || locked, "allow_all": locked}})
}

// UpdatePreference stores the opt-in
func (h *PreferencesHandler) UpdatePreference(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	if h.store.AllowAll() {
		return echo.NewHTTPError(http.StatusConflict, watchlist.ErrPreferenceLocked.Error())
	}

	var req models.PreferenceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.store.SetAllowFollow(c.Request().Context(), currentUserID, *req.AllowFollow); err != nil {
		switch {
		case errors.Is(err, watchlist.ErrPreferenceLocked):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"allow_follow": *req.AllowFollow, "allow_all": false}})
}
