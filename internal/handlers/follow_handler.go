package handlers

import (
	"net/http"

	"github.com/anonto42/userswatch/backend/internal/watchlist"
	"github.com/labstack/echo/v4"
)

// FollowHandler watches and unwatches users addressed by id
type FollowHandler struct {
	store *watchlist.Store
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(store *watchlist.Store) *FollowHandler {
	return &FollowHandler{store: store}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
}

// FollowUser follows a user. Following twice is not an error.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	accepted, err := h.store.Follow(c.Request().Context(), currentUserID, []watchlist.UserRef{watchlist.ByID(targetID)})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(accepted) == 0 {
		return echo.NewHTTPError(http.StatusForbidden, "This user cannot be watched")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": true}})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.store.Unfollow(c.Request().Context(), currentUserID, []watchlist.UserRef{watchlist.ByID(targetID)}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": false}})
}
