package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog"

	"github.com/tiu-access/visit-access/internal/api/metrics"
	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

// Event channels. Security staff listen on SecurityChannel for new
// requests; each appellant listens on their own channel for reviews.
const (
	SecurityChannel        = "sec"
	appellantChannelPrefix = "applicant:"
)

// AppellantChannel names the channel review events for userID go to.
func AppellantChannel(userID string) string {
	return appellantChannelPrefix + userID
}

// RequestServiceOptions holds the non-collaborator settings of the engine.
type RequestServiceOptions struct {
	// BaseURL prefixes the verification address embedded in credentials.
	BaseURL string
	// PhoneRegion is used to parse guest numbers written without a country
	// code.
	PhoneRegion string
}

// RequestService owns the visit request state machine.
type RequestService struct {
	repo   ports.RequestRepository
	users  ports.UserRepository
	issuer ports.CredentialIssuer
	queue  ports.NotificationQueue
	events ports.EventPublisher
	opts   RequestServiceOptions
	now    func() time.Time
	logger zerolog.Logger
}

func NewRequestService(
	repo ports.RequestRepository,
	users ports.UserRepository,
	issuer ports.CredentialIssuer,
	queue ports.NotificationQueue,
	events ports.EventPublisher,
	opts RequestServiceOptions,
	logger zerolog.Logger,
) *RequestService {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = "RU"
	}
	return &RequestService{
		repo:   repo,
		users:  users,
		issuer: issuer,
		queue:  queue,
		events: events,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// VerificationAddress is the canonical address a credential for requestID
// points to.
func (s *RequestService) VerificationAddress(requestID string) string {
	return s.opts.BaseURL + "/requests/" + requestID
}

// Create opens a new request in status new. The request and its guests are
// written together.
func (s *RequestService) Create(ctx context.Context, actor domain.Actor, in ports.CreateRequestInput) (*domain.VisitRequest, error) {
	if actor.ID == "" {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrForbidden)
	}
	appellant, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown account", domain.ErrForbidden)
		}
		return nil, err
	}

	purpose := strings.TrimSpace(in.Purpose)
	place := strings.TrimSpace(in.Place)
	switch {
	case purpose == "":
		return nil, domain.Validationf("purpose is required")
	case place == "":
		return nil, domain.Validationf("place is required")
	case in.VisitAt.IsZero():
		return nil, domain.Validationf("visit time is required")
	case len(in.Guests) == 0:
		return nil, domain.Validationf("at least one guest is required")
	}

	guests := make([]domain.Guest, 0, len(in.Guests))
	for i, g := range in.Guests {
		guest, err := s.newGuest(g)
		if err != nil {
			return nil, fmt.Errorf("guest %d: %w", i+1, err)
		}
		guests = append(guests, guest)
	}

	req := &domain.VisitRequest{
		ID:          uuid.NewString(),
		Purpose:     purpose,
		Place:       place,
		VisitAt:     in.VisitAt.UTC(),
		AppellantID: actor.ID,
		Appellant: &domain.UserRef{
			ID:       appellant.ID,
			FullName: appellant.FullName,
			Email:    appellant.Email,
		},
		Status:    domain.StatusNew,
		Guests:    guests,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, req); err != nil {
		s.logger.Error().Err(err).Msg("failed to create visit request")
		return nil, err
	}
	metrics.RequestsCreatedTotal.Inc()

	s.logger.Info().
		Str("request_id", req.ID).
		Str("appellant_id", actor.ID).
		Int("guests", len(guests)).
		Msg("visit request created")

	s.publish(context.WithoutCancel(ctx), SecurityChannel, map[string]any{
		"event":      "request.created",
		"request_id": req.ID,
	})
	return req, nil
}

func (s *RequestService) newGuest(in ports.GuestInput) (domain.Guest, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return domain.Guest{}, domain.Validationf("full name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return domain.Guest{}, err
	}
	phone, err := s.normalizePhone(in.PhoneNumber)
	if err != nil {
		return domain.Guest{}, err
	}
	return domain.Guest{
		ID:          uuid.NewString(),
		FullName:    name,
		Email:       email,
		PhoneNumber: phone,
		IsForeign:   in.IsForeign,
		VisitStatus: domain.VisitPending,
	}, nil
}

// normalizePhone returns the number in E.164 form.
func (s *RequestService) normalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), s.opts.PhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", domain.Validationf("invalid phone number %q", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Get returns one request. Employee-only actors only see their own.
func (s *RequestService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.VisitRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Roles.EmployeeOnly() && req.AppellantID != actor.ID {
		return nil, domain.ErrRequestNotFound
	}
	return req, nil
}

// Review moves a new request to accepted or rejected. The status write is
// the only part that can fail the call; credential issuance, notifications
// and events run after it and are best-effort.
func (s *RequestService) Review(ctx context.Context, actor domain.Actor, in ports.ReviewInput) (*domain.VisitRequest, error) {
	if !actor.Roles.Has(domain.RoleConfirming) {
		return nil, fmt.Errorf("%w: confirming role required", domain.ErrForbidden)
	}
	if in.Decision != domain.StatusAccepted && in.Decision != domain.StatusRejected {
		return nil, domain.Validationf("decision must be %q or %q", domain.StatusAccepted, domain.StatusRejected)
	}

	current, err := s.repo.FindByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(in.Decision) {
		return nil, fmt.Errorf("%w: request is already %s", domain.ErrInvalidState, current.Status)
	}

	updated, err := s.repo.Transition(ctx, current.ID, ports.ReviewUpdate{
		From:         current.Status,
		To:           in.Decision,
		ConfirmingID: actor.ID,
		Comment:      strings.TrimSpace(in.Comment),
		At:           s.now(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			metrics.ReviewConflictsTotal.Inc()
			s.logger.Info().Str("request_id", current.ID).Msg("concurrent review lost")
		}
		return nil, err
	}
	if updated.Appellant == nil {
		updated.Appellant = current.Appellant
	}
	metrics.RequestsReviewedTotal.WithLabelValues(string(updated.Status)).Inc()

	s.logger.Info().
		Str("request_id", updated.ID).
		Str("confirming_id", actor.ID).
		Str("status", string(updated.Status)).
		Msg("visit request reviewed")

	// The review is committed; the caller going away must not cut the
	// follow-up work short.
	s.afterReview(context.WithoutCancel(ctx), updated)
	return updated, nil
}

func (s *RequestService) afterReview(ctx context.Context, req *domain.VisitRequest) {
	appellantEmail := ""
	if req.Appellant != nil {
		appellantEmail = req.Appellant.Email
	}

	switch req.Status {
	case domain.StatusAccepted:
		req.CredentialLocation = s.issueCredential(ctx, req)
		for _, g := range req.Guests {
			enqueue(ctx, s.queue, s.logger, guestPass(req, g, req.CredentialLocation))
		}
		if appellantEmail != "" {
			enqueue(ctx, s.queue, s.logger, approvedNotice(req, appellantEmail))
		}
	case domain.StatusRejected:
		if appellantEmail != "" {
			enqueue(ctx, s.queue, s.logger, rejectedNotice(req, appellantEmail))
		}
	}
	if appellantEmail == "" {
		s.logger.Warn().Str("request_id", req.ID).Msg("appellant has no address, skipping notice")
	}

	s.publish(ctx, AppellantChannel(req.AppellantID), map[string]any{
		"event":      "request.reviewed",
		"request_id": req.ID,
		"status":     req.Status,
	})
}

// issueCredential returns the stored location, or "" when issuance failed.
func (s *RequestService) issueCredential(ctx context.Context, req *domain.VisitRequest) string {
	cred, err := s.issuer.Issue(ctx, s.VerificationAddress(req.ID))
	if err != nil {
		metrics.CredentialsIssuedTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("request_id", req.ID).Msg("failed to issue credential")
		return ""
	}
	if err := s.repo.SetCredentialLocation(ctx, req.ID, cred.Location); err != nil {
		metrics.CredentialsIssuedTotal.WithLabelValues("unsaved").Inc()
		s.logger.Error().Err(err).Str("request_id", req.ID).Msg("failed to store credential location")
		return cred.Location
	}
	metrics.CredentialsIssuedTotal.WithLabelValues("ok").Inc()
	return cred.Location
}

func (s *RequestService) publish(ctx context.Context, channel string, payload map[string]any) {
	kind := channel
	if strings.HasPrefix(channel, appellantChannelPrefix) {
		kind = strings.TrimSuffix(appellantChannelPrefix, ":")
	}
	if err := s.events.Publish(ctx, channel, payload); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(kind, "error").Inc()
		s.logger.Warn().Err(err).Str("channel", channel).Msg("failed to publish event")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(kind, "ok").Inc()
}

// Remove deletes a request and its guests. Admin only.
func (s *RequestService) Remove(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.Roles.Has(domain.RoleAdmin) {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("request_id", id).Str("actor_id", actor.ID).Msg("visit request removed")
	return nil
}

// List returns a lazy sequence of matching requests, newest first.
// Employee-only actors are pinned to their own requests whatever appellant
// filter they pass.
func (s *RequestService) List(ctx context.Context, actor domain.Actor, in ports.ListRequestsInput) (iter.Seq2[*domain.VisitRequest, error], error) {
	if in.Status != "" {
		if _, ok := domain.ParseRequestStatus(string(in.Status)); !ok {
			return nil, domain.Validationf("unknown status %q", in.Status)
		}
	}

	filter := ports.RequestFilter{
		Status:        in.Status,
		GuestName:     strings.TrimSpace(in.GuestName),
		AppellantName: strings.TrimSpace(in.AppellantName),
	}
	if actor.Roles.EmployeeOnly() {
		filter.AppellantID = actor.ID
		filter.AppellantName = ""
	}
	return s.repo.List(ctx, filter), nil
}

// CheckIn records a guest entering the site.
func (s *RequestService) CheckIn(ctx context.Context, actor domain.Actor, requestID, guestID string) error {
	return s.moveGuest(ctx, actor, requestID, guestID, domain.VisitEntered)
}

// CheckOut records a guest leaving the site.
func (s *RequestService) CheckOut(ctx context.Context, actor domain.Actor, requestID, guestID string) error {
	return s.moveGuest(ctx, actor, requestID, guestID, domain.VisitExited)
}

func (s *RequestService) moveGuest(ctx context.Context, actor domain.Actor, requestID, guestID string, to domain.GuestVisitStatus) error {
	if !actor.Roles.Has(domain.RoleSecurity) {
		return fmt.Errorf("%w: security role required", domain.ErrForbidden)
	}
	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != domain.StatusAccepted {
		return fmt.Errorf("%w: request is %s", domain.ErrInvalidState, req.Status)
	}
	guest, ok := req.Guest(guestID)
	if !ok {
		return domain.ErrGuestNotFound
	}
	if !guest.VisitStatus.CanTransitionTo(to) {
		return fmt.Errorf("%w: guest is %s", domain.ErrInvalidState, guest.VisitStatus)
	}
	if err := s.repo.SetGuestVisitStatus(ctx, requestID, guestID, guest.VisitStatus, to); err != nil {
		return err
	}
	s.logger.Info().
		Str("request_id", requestID).
		Str("guest_id", guestID).
		Str("visit_status", string(to)).
		Msg("guest visit status changed")
	return nil
}
