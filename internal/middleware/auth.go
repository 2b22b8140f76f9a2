package middleware

import (
	"heriken-shop/internal/model"

	"github.com/labstack/echo/v4"
)

// RequireUser lets through sessions bound to a user.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !SessionFrom(c).IsAuthenticated() {
				return model.ErrLoginRequired
			}
			return next(c)
		}
	}
}

// RequireAdmin checks the role cached in the session at login. With
// requireRole false every caller passes, which is only meant for demos.
func RequireAdmin(requireRole bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !requireRole {
				return next(c)
			}

			session := SessionFrom(c)
			if !session.IsAuthenticated() {
				return model.ErrLoginRequired
			}
			if !session.Role.IsAdmin() {
				return model.ErrAccessDenied
			}
			return next(c)
		}
	}
}
