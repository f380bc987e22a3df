package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

type stubResolver struct {
	roles map[string]domain.RoleSet
	err   error
	calls int
}

func (s *stubResolver) RolesOf(_ context.Context, userID string) (domain.RoleSet, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.roles[userID], nil
}

func TestActorMiddleware_ResolvesEveryRequest(t *testing.T) {
	e := echo.New()
	resolver := &stubResolver{roles: map[string]domain.RoleSet{"u1": {domain.RoleEmployee}}}
	handler := Actor(resolver)(func(c echo.Context) error {
		actor, ok := c.Get(ActorKey).(domain.Actor)
		if !ok || actor.ID != "u1" || !actor.Roles.EmployeeOnly() {
			t.Fatalf("unexpected actor: %+v", c.Get(ActorKey))
		}
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(UserIDKey, "u1")
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}
	if resolver.calls != 2 {
		t.Fatalf("expected 2 lookups, got %d", resolver.calls)
	}
}

func TestActorMiddleware_MissingUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Actor(&stubResolver{})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestActorMiddleware_ResolverError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(UserIDKey, "u1")

	boom := errors.New("mongo down")
	handler := Actor(&stubResolver{err: boom})(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}
