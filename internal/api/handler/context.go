package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

// ctxActor returns the actor stored by the Actor middleware. A missing actor
// means the route was mounted outside the authenticated group.
func ctxActor(c echo.Context) (domain.Actor, error) {
	actor, ok := c.Get("actor").(domain.Actor)
	if !ok || actor.ID == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return actor, nil
}
