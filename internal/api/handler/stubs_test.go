package handler

import (
	"context"
	"iter"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

// newContext builds an echo context with the handler validator attached.
// A non-empty body is sent as JSON.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withActor(c echo.Context, id string, roles ...domain.RoleID) echo.Context {
	c.Set("actor", domain.Actor{ID: id, Roles: roles})
	return c
}

type stubAuthService struct {
	loginFn func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubAccountService struct {
	createFn   func(ctx context.Context, actor domain.Actor, in ports.CreateAccountInput) (*domain.User, error)
	registerFn func(ctx context.Context, token, password string) error
	recoverFn  func(ctx context.Context, email string) error
	resetFn    func(ctx context.Context, token, password string) error
	getFn      func(ctx context.Context, actor domain.Actor, id string) (*domain.User, error)
	listFn     func(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
}

func (s *stubAccountService) CreateAccount(ctx context.Context, actor domain.Actor, in ports.CreateAccountInput) (*domain.User, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubAccountService) CompleteRegistration(ctx context.Context, token, password string) error {
	return s.registerFn(ctx, token, password)
}

func (s *stubAccountService) RequestPasswordRecovery(ctx context.Context, email string) error {
	return s.recoverFn(ctx, email)
}

func (s *stubAccountService) CompletePasswordRecovery(ctx context.Context, token, password string) error {
	return s.resetFn(ctx, token, password)
}

func (s *stubAccountService) GetUser(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubAccountService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	return s.listFn(ctx, actor)
}

type roleCall struct {
	actor  domain.Actor
	target string
	role   domain.RoleID
}

type stubRoleService struct {
	err      error
	assigned []roleCall
	removed  []roleCall
}

func (s *stubRoleService) RolesOf(context.Context, string) (domain.RoleSet, error) {
	return nil, nil
}

func (s *stubRoleService) HasRole(context.Context, string, domain.RoleID) (bool, error) {
	return false, nil
}

func (s *stubRoleService) AssignRole(_ context.Context, actor domain.Actor, target string, role domain.RoleID) error {
	s.assigned = append(s.assigned, roleCall{actor, target, role})
	return s.err
}

func (s *stubRoleService) RemoveRole(_ context.Context, actor domain.Actor, target string, role domain.RoleID) error {
	s.removed = append(s.removed, roleCall{actor, target, role})
	return s.err
}

type stubRequestService struct {
	createFn func(ctx context.Context, actor domain.Actor, in ports.CreateRequestInput) (*domain.VisitRequest, error)
	getFn    func(ctx context.Context, actor domain.Actor, id string) (*domain.VisitRequest, error)
	reviewFn func(ctx context.Context, actor domain.Actor, in ports.ReviewInput) (*domain.VisitRequest, error)
	removeFn func(ctx context.Context, actor domain.Actor, id string) error
	listFn   func(ctx context.Context, actor domain.Actor, in ports.ListRequestsInput) (iter.Seq2[*domain.VisitRequest, error], error)
	moveFn   func(op string, actor domain.Actor, requestID, guestID string) error
}

func (s *stubRequestService) Create(ctx context.Context, actor domain.Actor, in ports.CreateRequestInput) (*domain.VisitRequest, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubRequestService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.VisitRequest, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubRequestService) Review(ctx context.Context, actor domain.Actor, in ports.ReviewInput) (*domain.VisitRequest, error) {
	return s.reviewFn(ctx, actor, in)
}

func (s *stubRequestService) Remove(ctx context.Context, actor domain.Actor, id string) error {
	return s.removeFn(ctx, actor, id)
}

func (s *stubRequestService) List(ctx context.Context, actor domain.Actor, in ports.ListRequestsInput) (iter.Seq2[*domain.VisitRequest, error], error) {
	return s.listFn(ctx, actor, in)
}

func (s *stubRequestService) CheckIn(_ context.Context, actor domain.Actor, requestID, guestID string) error {
	return s.moveFn("check-in", actor, requestID, guestID)
}

func (s *stubRequestService) CheckOut(_ context.Context, actor domain.Actor, requestID, guestID string) error {
	return s.moveFn("check-out", actor, requestID, guestID)
}

// seqOf yields the given requests and then err, if any.
func seqOf(err error, rs ...*domain.VisitRequest) iter.Seq2[*domain.VisitRequest, error] {
	return func(yield func(*domain.VisitRequest, error) bool) {
		for _, r := range rs {
			if !yield(r, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

type stubCredentials struct {
	stored map[string]*ports.StoredCredential
}

func (s *stubCredentials) Lookup(_ context.Context, handle string) (*ports.StoredCredential, error) {
	if c, ok := s.stored[handle]; ok {
		return c, nil
	}
	return nil, domain.ErrCredentialNotFound
}
