package middleware

import (
	"github.com/anonto42/userswatch/backend/internal/watchlist"
	"github.com/labstack/echo/v4"
)

// WatchListMemo gives every request its own watch list lookup cache
func WatchListMemo() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(watchlist.WithMemo(req.Context())))
			return next(c)
		}
	}
}
