package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tiu-access/visit-access/internal/core/ports"
)

// CredentialLookup finds a previously issued visit pass.
type CredentialLookup interface {
	Lookup(ctx context.Context, handle string) (*ports.StoredCredential, error)
}

// CredentialHandler serves the passes linked from guest notifications.
type CredentialHandler struct {
	credentials CredentialLookup
}

func NewCredentialHandler(credentials CredentialLookup) *CredentialHandler {
	return &CredentialHandler{credentials: credentials}
}

// Get handles GET /credentials/:handle.
//
// @Summary      Fetch an issued visit pass
// @Tags         credentials
// @Produce      json
// @Param        handle  path      string  true  "Credential handle"
// @Success      200     {object}  credentialResponse
// @Failure      404     {object}  errorResponse
// @Router       /credentials/{handle} [get]
func (h *CredentialHandler) Get(c echo.Context) error {
	cred, err := h.credentials.Lookup(c.Request().Context(), c.Param("handle"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCredentialResponse(cred))
}
