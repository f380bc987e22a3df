package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// RequestHandler exposes the visit request lifecycle.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /requests.
//
// @Summary      Open a visit request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRequestRequest  true  "Visit details and guests"
// @Success      201   {object}  requestResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), actor, toCreateRequestInput(req))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/requests/"+created.ID)
	return c.JSON(http.StatusCreated, toRequestResponse(created))
}

// List handles GET /requests. Employee-only callers see their own requests.
//
// @Summary      List visit requests, newest first
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status          query     string  false  "new, accepted or rejected"
// @Param        guest_name      query     string  false  "Substring of a guest name"
// @Param        appellant_name  query     string  false  "Substring of the appellant name"
// @Param        page            query     int     false  "Page number, from 1"
// @Param        limit           query     int     false  "Page size, at most 100"
// @Success      200             {object}  requestListResponse
// @Failure      400             {object}  errorResponse
// @Router       /requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	page, err := queryInt(c, "page", 1)
	if err != nil || page < 1 {
		return domain.Validationf("page must be a positive integer")
	}
	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil || limit < 1 {
		return domain.Validationf("limit must be a positive integer")
	}
	limit = min(limit, maxPageSize)

	seq, err := h.service.List(c.Request().Context(), actor, ports.ListRequestsInput{
		Status:        domain.RequestStatus(c.QueryParam("status")),
		GuestName:     c.QueryParam("guest_name"),
		AppellantName: c.QueryParam("appellant_name"),
	})
	if err != nil {
		return err
	}

	resp := requestListResponse{Items: make([]requestResponse, 0, limit), Page: page, Limit: limit}
	skip := (page - 1) * limit
	for r, err := range seq {
		if err != nil {
			return err
		}
		if skip > 0 {
			skip--
			continue
		}
		if len(resp.Items) == limit {
			resp.HasMore = true
			break
		}
		resp.Items = append(resp.Items, toRequestResponse(r))
	}

	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /requests/:id.
//
// @Summary      Get a visit request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  requestResponse
// @Failure      404  {object}  errorResponse
// @Router       /requests/{id} [get]
func (h *RequestHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	r, err := h.service.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(r))
}

// Review handles POST /requests/:id/review.
//
// @Summary      Accept or reject a new visit request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Request id"
// @Param        body  body      reviewRequest  true  "Decision"
// @Success      200   {object}  requestResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /requests/{id}/review [post]
func (h *RequestHandler) Review(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	reviewed, err := h.service.Review(c.Request().Context(), actor, ports.ReviewInput{
		RequestID: c.Param("id"),
		Decision:  domain.RequestStatus(req.Decision),
		Comment:   req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(reviewed))
}

// Remove handles DELETE /requests/:id.
//
// @Summary      Delete a visit request and its guests
// @Tags         requests
// @Security     BearerAuth
// @Param        id   path  string  true  "Request id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /requests/{id} [delete]
func (h *RequestHandler) Remove(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Remove(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CheckIn handles POST /requests/:id/guests/:guestId/check-in.
//
// @Summary      Record a guest entering
// @Tags         requests
// @Security     BearerAuth
// @Param        id       path  string  true  "Request id"
// @Param        guestId  path  string  true  "Guest id"
// @Success      204
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /requests/{id}/guests/{guestId}/check-in [post]
func (h *RequestHandler) CheckIn(c echo.Context) error {
	return h.moveGuest(c, h.service.CheckIn)
}

// CheckOut handles POST /requests/:id/guests/:guestId/check-out.
//
// @Summary      Record a guest leaving
// @Tags         requests
// @Security     BearerAuth
// @Param        id       path  string  true  "Request id"
// @Param        guestId  path  string  true  "Guest id"
// @Success      204
// @Failure      403      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      422      {object}  errorResponse
// @Router       /requests/{id}/guests/{guestId}/check-out [post]
func (h *RequestHandler) CheckOut(c echo.Context) error {
	return h.moveGuest(c, h.service.CheckOut)
}

func (h *RequestHandler) moveGuest(c echo.Context, move func(ctx context.Context, actor domain.Actor, requestID, guestID string) error) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := move(c.Request().Context(), actor, c.Param("id"), c.Param("guestId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
