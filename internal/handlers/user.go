package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/userswatch/backend/internal/repositories"
	"github.com/anonto42/userswatch/backend/internal/watchlist"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository repositories.UserRepository
	store          *watchlist.Store
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, store *watchlist.Store) *UserHandler {
	return &UserHandler{userRepository: userRepo, store: store}
}

// RegisterUserRoutes registers user profile-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/:id", h.GetUser) // Get a user's profile with watch list counts
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	counts, err := h.store.GetCounts(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	watching := false
	if currentUserID := getUserIDFromContext(c); currentUserID != 0 && currentUserID != id {
		if watching, err = h.store.IsFollowing(ctx, watchlist.ByID(currentUserID), watchlist.ByID(id)); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"user":       user.ToCompact(),
			"followable": h.store.IsFollowable(user),
			"counts":     counts,
			"watching":   watching,
		},
	})
}
