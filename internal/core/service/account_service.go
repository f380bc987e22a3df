package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tiu-access/visit-access/internal/api/metrics"
	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

const minPasswordLength = 8

// AccountService creates accounts and drives the registration and password
// recovery flows on top of the token service.
type AccountService struct {
	users   ports.UserRepository
	roles   ports.RoleRepository
	tokens  ports.TokenService
	encoder ports.PasswordEncoder
	queue   ports.NotificationQueue
	baseURL string
	now     func() time.Time
	logger  zerolog.Logger
}

func NewAccountService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	tokens ports.TokenService,
	encoder ports.PasswordEncoder,
	queue ports.NotificationQueue,
	baseURL string,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:   users,
		roles:   roles,
		tokens:  tokens,
		encoder: encoder,
		queue:   queue,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
}

// CreateAccount registers a user without a password, assigns the requested
// roles and mails a registration link.
func (s *AccountService) CreateAccount(ctx context.Context, actor domain.Actor, in ports.CreateAccountInput) (*domain.User, error) {
	if !actor.Roles.Has(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}

	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, domain.Validationf("full name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	roles := slices.Clone(in.Roles)
	slices.Sort(roles)
	roles = slices.Compact(roles)
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("%w: %d", domain.ErrRoleNotFound, r)
		}
	}

	now := s.now()
	user := &domain.User{
		ID:        uuid.NewString(),
		FullName:  name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	for _, r := range roles {
		if err := s.roles.Assign(ctx, domain.RoleAssignment{UserID: user.ID, RoleID: r}); err != nil {
			return nil, err
		}
	}
	user.Roles = roles

	token, err := s.tokens.Issue(ctx, user.ID, actor.ID, domain.PurposeRegistration)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, registrationNotice(user.Email, s.baseURL+"/register/"+token.Value))

	s.logger.Info().
		Str("actor_id", actor.ID).
		Str("user_id", user.ID).
		Strs("roles", user.Roles.Names()).
		Msg("account created")
	return user, nil
}

func (s *AccountService) CompleteRegistration(ctx context.Context, token, password string) error {
	return s.setPasswordWith(ctx, token, domain.PurposeRegistration, password)
}

// RequestPasswordRecovery mails a reset link when the email belongs to an
// account. Unknown emails succeed silently.
func (s *AccountService) RequestPasswordRecovery(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug().Msg("password recovery requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.tokens.Issue(ctx, user.ID, user.ID, domain.PurposePasswordRecovery)
	if err != nil {
		return err
	}
	s.notify(ctx, recoveryNotice(user.Email, s.baseURL+"/password-recovery/"+token.Value))
	return nil
}

func (s *AccountService) CompletePasswordRecovery(ctx context.Context, token, password string) error {
	return s.setPasswordWith(ctx, token, domain.PurposePasswordRecovery, password)
}

func (s *AccountService) setPasswordWith(ctx context.Context, token string, purpose domain.TokenPurpose, password string) error {
	if len(password) < minPasswordLength {
		return domain.Validationf("password must be at least %d characters", minPasswordLength)
	}
	encoded, err := s.encoder.Encode(password)
	if err != nil {
		return fmt.Errorf("encode password: %w", err)
	}

	return s.tokens.Consume(ctx, token, purpose, func(ctx context.Context, t *domain.ActivationToken) error {
		if err := s.users.SetPassword(ctx, t.UserID, encoded, s.now()); err != nil {
			return err
		}
		s.logger.Info().Str("user_id", t.UserID).Str("purpose", string(purpose)).Msg("password set")
		return nil
	})
}

func (s *AccountService) GetUser(ctx context.Context, actor domain.Actor, id string) (*domain.User, error) {
	if !actor.Roles.Has(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Roles, err = s.roles.RolesOf(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) ListUsers(ctx context.Context, actor domain.Actor) ([]*domain.User, error) {
	if !actor.Roles.Has(domain.RoleAdmin) {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Roles, err = s.roles.RolesOf(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *AccountService) notify(ctx context.Context, n domain.Notification) {
	enqueue(ctx, s.queue, s.logger, n)
}

// enqueue hands n to the queue. Failures are counted and logged but never
// returned: the state change that produced n is already committed.
func enqueue(ctx context.Context, q ports.NotificationQueue, logger zerolog.Logger, n domain.Notification) bool {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := q.Enqueue(ctx, n); err != nil {
		metrics.NotificationsEnqueuedTotal.WithLabelValues(string(n.Kind), "error").Inc()
		logger.Warn().Err(err).
			Str("kind", string(n.Kind)).
			Str("request_id", n.RequestID).
			Str("address", n.Address).
			Msg("failed to enqueue notification")
		return false
	}
	metrics.NotificationsEnqueuedTotal.WithLabelValues(string(n.Kind), "ok").Inc()
	return true
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", domain.Validationf("invalid email address %q", raw)
	}
	return strings.ToLower(addr.Address), nil
}
