package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/anonto42/userswatch/backend/internal/models"
	"github.com/anonto42/userswatch/backend/internal/watchlist"
	"github.com/labstack/echo/v4"
)

// UsersWatchHandler exposes the watch list of the authenticated user
type UsersWatchHandler struct {
	store *watchlist.Store
}

// NewUsersWatchHandler creates a new UsersWatchHandler
func NewUsersWatchHandler(store *watchlist.Store) *UsersWatchHandler {
	return &UsersWatchHandler{store: store}
}

// RegisterUsersWatchRoutes registers watch list routes
func (h *UsersWatchHandler) RegisterUsersWatchRoutes(g *echo.Group) {
	g.POST("/userswatch", h.Watch)
	g.GET("/userswatch", h.GetWatchList)
	g.DELETE("/userswatch", h.ClearWatchList)
	g.GET("/userswatch/raw", h.GetRawWatchList)
	g.PUT("/userswatch/raw", h.EditRawWatchList)
	g.POST("/userswatch/remove", h.RemoveFromWatchList)
	g.GET("/userswatch/is/:name", h.IsWatching)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/counts", h.GetCounts)
}

// Watch follows one user, or unfollows it when watch is "no"
func (h *UsersWatchHandler) Watch(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.WatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if req.Watch == "no" {
		if err := h.store.Unfollow(ctx, currentUserID, []watchlist.UserRef{watchlist.ByName(req.User)}); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"userswatch": echo.Map{"success": 1, "result": "OK", "detail": true}})
	}

	accepted, err := h.store.Follow(ctx, currentUserID, []watchlist.UserRef{watchlist.ByName(req.User)})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(accepted) == 0 {
		return c.JSON(http.StatusOK, echo.Map{"userswatch": echo.Map{"result": "fail", "detail": accepted}})
	}
	return c.JSON(http.StatusOK, echo.Map{"userswatch": echo.Map{"success": 1, "result": "OK", "detail": accepted}})
}

// GetWatchList lists watched users ordered by name
func (h *UsersWatchHandler) GetWatchList(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	users, err := h.store.ListFollowingDetailed(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"users": users, "count": len(users)}})
}

// GetRawWatchList returns the watch list as newline separated names
func (h *UsersWatchHandler) GetRawWatchList(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	names, err := h.store.ListFollowingNames(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	sort.Strings(names)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"titles": strings.Join(names, "\n")}})
}

// EditRawWatchList replaces the watch list with the submitted names
func (h *UsersWatchHandler) EditRawWatchList(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.RawListRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.store.Sync(c.Request().Context(), currentUserID, req.Titles)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": result})
}

// RemoveFromWatchList unfollows the checked users
func (h *UsersWatchHandler) RemoveFromWatchList(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.RemoveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	removed, err := h.store.Remove(c.Request().Context(), currentUserID, req.Users)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"removed": removed}})
}

// ClearWatchList empties the watch list
func (h *UsersWatchHandler) ClearWatchList(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	removed, err := h.store.Clear(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"removed": removed}})
}

// IsWatching reports whether the current user watches :name
func (h *UsersWatchHandler) IsWatching(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	watching, err := h.store.IsFollowing(c.Request().Context(), watchlist.ByID(currentUserID), watchlist.ByName(c.Param("name")))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"watching": watching}})
}

// GetFollowers lists the users watching :id
func (h *UsersWatchHandler) GetFollowers(c echo.Context) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	users, err := h.store.ListFollowers(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"users": users, "count": len(users)}})
}

// GetCounts returns the following and followers counts of :id
func (h *UsersWatchHandler) GetCounts(c echo.Context) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	counts, err := h.store.GetCounts(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": counts})
}
