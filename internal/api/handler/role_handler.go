package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

type RoleHandler struct {
	roles ports.RoleService
}

func NewRoleHandler(roles ports.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// Assign handles POST /users/:id/roles/:role.
//
// @Summary      Grant a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "User id"
// @Param        role  path  string  true  "Role name or id"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/{id}/roles/{role} [post]
func (h *RoleHandler) Assign(c echo.Context) error {
	actor, role, err := roleParams(c)
	if err != nil {
		return err
	}
	if err := h.roles.AssignRole(c.Request().Context(), actor, c.Param("id"), role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Remove handles DELETE /users/:id/roles/:role.
//
// @Summary      Revoke a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string  true  "User id"
// @Param        role  path  string  true  "Role name or id"
// @Success      204
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/{id}/roles/{role} [delete]
func (h *RoleHandler) Remove(c echo.Context) error {
	actor, role, err := roleParams(c)
	if err != nil {
		return err
	}
	if err := h.roles.RemoveRole(c.Request().Context(), actor, c.Param("id"), role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func roleParams(c echo.Context) (domain.Actor, domain.RoleID, error) {
	actor, err := ctxActor(c)
	if err != nil {
		return domain.Actor{}, 0, err
	}
	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		return domain.Actor{}, 0, domain.ErrRoleNotFound
	}
	return actor, role, nil
}
