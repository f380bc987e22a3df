package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

// RoleResolver returns the roles a user currently holds.
type RoleResolver interface {
	RolesOf(ctx context.Context, userID string) (domain.RoleSet, error)
}

// Actor resolves the authenticated user's roles on every request and stores
// the resulting domain.Actor under ActorKey. It must run after Auth.
func Actor(roles RoleResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(UserIDKey).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			set, err := roles.RolesOf(c.Request().Context(), userID)
			if err != nil {
				return err
			}
			c.Set(ActorKey, domain.Actor{ID: userID, Roles: set})

			return next(c)
		}
	}
}
