package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

func TestAccountHandler_Create(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	stub := &stubAccountService{
		createFn: func(ctx context.Context, actor domain.Actor, in ports.CreateAccountInput) (*domain.User, error) {
			if actor.ID != "admin-1" {
				t.Fatalf("unexpected actor %+v", actor)
			}
			if in.FullName != "Bob Stone" || in.Email != "bob@example.com" {
				t.Fatalf("unexpected input %+v", in)
			}
			if len(in.Roles) != 2 || in.Roles[0] != domain.RoleEmployee || in.Roles[1] != domain.RoleConfirming {
				t.Fatalf("unexpected roles %v", in.Roles)
			}
			return &domain.User{ID: "u9", FullName: in.FullName, Email: in.Email, Roles: in.Roles, CreatedAt: created, UpdatedAt: created}, nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := newContext(http.MethodPost, "/users", `{"full_name":"Bob Stone","email":"bob@example.com","roles":["employee","confirming"]}`)
	withActor(c, "admin-1", domain.RoleAdmin)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "u9" || resp.Activated || len(resp.Roles) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAccountHandler_Create_Invalid(t *testing.T) {
	stub := &stubAccountService{
		createFn: func(context.Context, domain.Actor, ports.CreateAccountInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAccountHandler(stub)

	bodies := map[string]string{
		"unknown role": `{"full_name":"Bob","email":"bob@example.com","roles":["root"]}`,
		"bad email":    `{"full_name":"Bob","email":"bob","roles":["employee"]}`,
		"missing name": `{"email":"bob@example.com"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/users", body)
			withActor(c, "admin-1", domain.RoleAdmin)
			if err := handler.Create(c); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAccountHandler_Create_RequiresActor(t *testing.T) {
	handler := NewAccountHandler(&stubAccountService{})
	c, _ := newContext(http.MethodPost, "/users", `{}`)
	if err := handler.Create(c); err == nil {
		t.Fatalf("expected an error without an actor")
	}
}

func TestAccountHandler_Directory(t *testing.T) {
	users := []*domain.User{
		{ID: "u1", FullName: "Ann", Email: "ann@example.com", Roles: domain.RoleSet{domain.RoleAdmin}},
		{ID: "u2", FullName: "Ben", Email: "ben@example.com"},
	}
	stub := &stubAccountService{
		listFn: func(context.Context, domain.Actor) ([]*domain.User, error) { return users, nil },
		getFn: func(_ context.Context, _ domain.Actor, id string) (*domain.User, error) {
			if id != "u2" {
				return nil, domain.ErrUserNotFound
			}
			return users[1], nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := newContext(http.MethodGet, "/users", "")
	withActor(c, "u1", domain.RoleAdmin)
	if err := handler.List(c); err != nil {
		t.Fatalf("list: %v", err)
	}
	var list userListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(list.Items) != 2 || list.Items[1].Roles == nil {
		t.Fatalf("unexpected list %+v", list)
	}

	c, rec = newContext(http.MethodGet, "/users/u2", "")
	c.SetParamNames("id")
	c.SetParamValues("u2")
	withActor(c, "u1", domain.RoleAdmin)
	if err := handler.Get(c); err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodGet, "/users/nope", "")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	withActor(c, "u1", domain.RoleAdmin)
	if err := handler.Get(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAccountHandler_TokenFlows(t *testing.T) {
	var gotToken, gotPassword, gotEmail string
	stub := &stubAccountService{
		registerFn: func(_ context.Context, token, password string) error {
			gotToken, gotPassword = token, password
			return nil
		},
		resetFn: func(_ context.Context, token, password string) error {
			return domain.ErrTokenConsumed
		},
		recoverFn: func(_ context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}
	handler := NewAccountHandler(stub)

	c, rec := newContext(http.MethodPost, "/register/abc", `{"password":"correct-horse"}`)
	c.SetParamNames("token")
	c.SetParamValues("abc")
	if err := handler.CompleteRegistration(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusOK || gotToken != "abc" || gotPassword != "correct-horse" {
		t.Fatalf("unexpected registration: %d %q %q", rec.Code, gotToken, gotPassword)
	}

	c, _ = newContext(http.MethodPost, "/register/abc", `{"password":"short"}`)
	c.SetParamNames("token")
	c.SetParamValues("abc")
	if err := handler.CompleteRegistration(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c, rec = newContext(http.MethodPost, "/password-recovery", `{"email":"ghost@example.com"}`)
	if err := handler.RequestRecovery(c); err != nil {
		t.Fatalf("recover: %v", err)
	}
	if rec.Code != http.StatusAccepted || gotEmail != "ghost@example.com" {
		t.Fatalf("unexpected recovery: %d %q", rec.Code, gotEmail)
	}

	c, _ = newContext(http.MethodPost, "/password-recovery/used", `{"password":"correct-horse"}`)
	c.SetParamNames("token")
	c.SetParamValues("used")
	if err := handler.CompleteRecovery(c); !errors.Is(err, domain.ErrTokenConsumed) {
		t.Fatalf("expected consumed token, got %v", err)
	}
}
