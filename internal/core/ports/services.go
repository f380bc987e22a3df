package ports

import (
	"context"
	"iter"
	"time"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

// RoleService answers permission checks and manages role assignments.
type RoleService interface {
	RolesOf(ctx context.Context, userID string) (domain.RoleSet, error)
	HasRole(ctx context.Context, userID string, role domain.RoleID) (bool, error)
	AssignRole(ctx context.Context, actor domain.Actor, targetUserID string, role domain.RoleID) error
	RemoveRole(ctx context.Context, actor domain.Actor, targetUserID string, role domain.RoleID) error
}

// TokenAction runs while a token is claimed. Returning an error releases it.
type TokenAction func(ctx context.Context, token *domain.ActivationToken) error

// TokenService issues and consumes single-use activation tokens.
type TokenService interface {
	Issue(ctx context.Context, userID, issuedBy string, purpose domain.TokenPurpose) (*domain.ActivationToken, error)
	Consume(ctx context.Context, value string, purpose domain.TokenPurpose, action TokenAction) error
}

// CreateAccountInput carries the admin-supplied account data.
type CreateAccountInput struct {
	FullName string
	Email    string
	Roles    []domain.RoleID
}

// AccountService covers account creation, registration and recovery.
type AccountService interface {
	CreateAccount(ctx context.Context, actor domain.Actor, in CreateAccountInput) (*domain.User, error)
	CompleteRegistration(ctx context.Context, token, password string) error
	RequestPasswordRecovery(ctx context.Context, email string) error
	CompletePasswordRecovery(ctx context.Context, token, password string) error
	GetUser(ctx context.Context, actor domain.Actor, id string) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error)
}

// AuthService authenticates account holders.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}

// GuestInput describes one guest on a new request.
type GuestInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	IsForeign   bool
}

// CreateRequestInput carries everything needed to open a visit request.
type CreateRequestInput struct {
	Purpose string
	Place   string
	VisitAt time.Time
	Guests  []GuestInput
}

// ReviewInput is a reviewer's decision.
type ReviewInput struct {
	RequestID string
	Decision  domain.RequestStatus
	Comment   string
}

// ListRequestsInput carries the caller-supplied filters.
type ListRequestsInput struct {
	Status        domain.RequestStatus
	GuestName     string
	AppellantName string
}

// RequestService is the request lifecycle engine.
type RequestService interface {
	Create(ctx context.Context, actor domain.Actor, in CreateRequestInput) (*domain.VisitRequest, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.VisitRequest, error)
	Review(ctx context.Context, actor domain.Actor, in ReviewInput) (*domain.VisitRequest, error)
	Remove(ctx context.Context, actor domain.Actor, id string) error
	List(ctx context.Context, actor domain.Actor, in ListRequestsInput) (iter.Seq2[*domain.VisitRequest, error], error)
	CheckIn(ctx context.Context, actor domain.Actor, requestID, guestID string) error
	CheckOut(ctx context.Context, actor domain.Actor, requestID, guestID string) error
}
