package service

import (
	"context"
	"errors"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tiu-access/visit-access/internal/core/domain"
	"github.com/tiu-access/visit-access/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stores. Each is mutex-guarded and applies the same conditional
// update contracts as the Mongo adapters.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	setPw int
	pwErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		r.byID[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetPassword(_ context.Context, id, encoded string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pwErr != nil {
		return r.pwErr
	}
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Password = encoded
	u.UpdatedAt = at
	r.setPw++
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		clone := *u
		out = append(out, &clone)
	}
	slices.SortFunc(out, func(a, b *domain.User) int { return strings.Compare(a.Email, b.Email) })
	return out, nil
}

type stubRoleRepo struct {
	mu    sync.Mutex
	pairs map[domain.RoleAssignment]bool
}

func newStubRoleRepo(assignments ...domain.RoleAssignment) *stubRoleRepo {
	r := &stubRoleRepo{pairs: make(map[domain.RoleAssignment]bool)}
	for _, a := range assignments {
		r.pairs[a] = true
	}
	return r
}

func (r *stubRoleRepo) RolesOf(_ context.Context, userID string) (domain.RoleSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var set domain.RoleSet
	for a := range r.pairs {
		if a.UserID == userID {
			set = append(set, a.RoleID)
		}
	}
	slices.Sort(set)
	return set, nil
}

func (r *stubRoleRepo) Assign(_ context.Context, a domain.RoleAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pairs[a] {
		return domain.ErrRoleAssigned
	}
	r.pairs[a] = true
	return nil
}

func (r *stubRoleRepo) Remove(_ context.Context, a domain.RoleAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.pairs[a] {
		return domain.ErrRoleNotAssigned
	}
	delete(r.pairs, a)
	return nil
}

func (r *stubRoleRepo) EnsureRoles(context.Context, []domain.Role) error { return nil }

type stubTokenRepo struct {
	mu      sync.Mutex
	byValue map[string]*domain.ActivationToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{byValue: make(map[string]*domain.ActivationToken)}
}

func (r *stubTokenRepo) Exists(_ context.Context, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byValue[value]
	return ok, nil
}

func (r *stubTokenRepo) Insert(_ context.Context, t *domain.ActivationToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byValue[t.Value]; ok {
		return domain.ErrTokenCollision
	}
	clone := *t
	r.byValue[t.Value] = &clone
	return nil
}

func (r *stubTokenRepo) Claim(_ context.Context, value string, purpose domain.TokenPurpose) (*domain.ActivationToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byValue[value]
	if !ok || t.Purpose != purpose {
		return nil, domain.ErrTokenNotFound
	}
	if t.Status != domain.TokenPending {
		return nil, domain.ErrTokenConsumed
	}
	now := time.Now().UTC()
	t.Status = domain.TokenConsumed
	t.ConsumedAt = &now
	clone := *t
	return &clone, nil
}

func (r *stubTokenRepo) Release(_ context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byValue[value]
	if !ok {
		return domain.ErrTokenNotFound
	}
	t.Status = domain.TokenPending
	t.ConsumedAt = nil
	return nil
}

func (r *stubTokenRepo) status(value string) domain.TokenStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byValue[value].Status
}

// forUser returns the newest token issued to userID.
func (r *stubTokenRepo) forUser(userID string) *domain.ActivationToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *domain.ActivationToken
	for _, t := range r.byValue {
		if t.UserID == userID && (found == nil || t.CreatedAt.After(found.CreatedAt)) {
			found = t
		}
	}
	return found
}

type stubRequestRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.VisitRequest
	users     *stubUserRepo
	locErr    error
	createErr error
}

func newStubRequestRepo(users *stubUserRepo) *stubRequestRepo {
	return &stubRequestRepo{byID: make(map[string]*domain.VisitRequest), users: users}
}

func cloneRequest(r *domain.VisitRequest) *domain.VisitRequest {
	clone := *r
	clone.Guests = slices.Clone(r.Guests)
	if r.Appellant != nil {
		ref := *r.Appellant
		clone.Appellant = &ref
	}
	return &clone
}

// joined mirrors the $lookup of the appellant.
func (r *stubRequestRepo) joined(req *domain.VisitRequest) *domain.VisitRequest {
	out := cloneRequest(req)
	out.Appellant = nil
	if u, err := r.users.FindByID(context.Background(), req.AppellantID); err == nil {
		out.Appellant = &domain.UserRef{ID: u.ID, FullName: u.FullName, Email: u.Email}
	}
	return out
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.VisitRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[req.ID] = cloneRequest(req)
	return nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.VisitRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return r.joined(req), nil
}

func (r *stubRequestRepo) Transition(_ context.Context, id string, u ports.ReviewUpdate) (*domain.VisitRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if req.Status != u.From {
		return nil, domain.ErrInvalidState
	}
	at := u.At
	req.Status = u.To
	req.ConfirmingID = u.ConfirmingID
	req.Comment = u.Comment
	req.ReviewedAt = &at
	out := cloneRequest(req)
	out.Appellant = nil
	return out, nil
}

func (r *stubRequestRepo) SetCredentialLocation(_ context.Context, id, location string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locErr != nil {
		return r.locErr
	}
	req, ok := r.byID[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.CredentialLocation = location
	return nil
}

func (r *stubRequestRepo) SetGuestVisitStatus(_ context.Context, requestID, guestID string, from, to domain.GuestVisitStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[requestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	g, ok := req.Guest(guestID)
	if !ok {
		return domain.ErrGuestNotFound
	}
	if g.VisitStatus != from {
		return domain.ErrInvalidState
	}
	g.VisitStatus = to
	return nil
}

func (r *stubRequestRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubRequestRepo) List(_ context.Context, f ports.RequestFilter) iter.Seq2[*domain.VisitRequest, error] {
	return func(yield func(*domain.VisitRequest, error) bool) {
		r.mu.Lock()
		var matched []*domain.VisitRequest
		for _, req := range r.byID {
			j := r.joined(req)
			if matches(j, f) {
				matched = append(matched, j)
			}
		}
		r.mu.Unlock()

		slices.SortFunc(matched, func(a, b *domain.VisitRequest) int { return b.CreatedAt.Compare(a.CreatedAt) })
		for _, req := range matched {
			if !yield(req, nil) {
				return
			}
		}
	}
}

func matches(req *domain.VisitRequest, f ports.RequestFilter) bool {
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	if f.AppellantID != "" && req.AppellantID != f.AppellantID {
		return false
	}
	if f.AppellantName != "" && (req.Appellant == nil || !containsFold(req.Appellant.FullName, f.AppellantName)) {
		return false
	}
	if f.GuestName != "" {
		return slices.ContainsFunc(req.Guests, func(g domain.Guest) bool { return containsFold(g.FullName, f.GuestName) })
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubQueue struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (q *stubQueue) Enqueue(_ context.Context, n domain.Notification) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, n)
	return nil
}

func (q *stubQueue) notifications() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.sent)
}

type stubIssuer struct {
	mu        sync.Mutex
	addresses []string
	err       error
}

func (i *stubIssuer) Issue(_ context.Context, addr string) (ports.IssuedCredential, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return ports.IssuedCredential{}, i.err
	}
	i.addresses = append(i.addresses, addr)
	return ports.IssuedCredential{Handle: "h1", Location: "https://visit.test/credentials/h1"}, nil
}

func (i *stubIssuer) Lookup(context.Context, string) (*ports.StoredCredential, error) {
	return nil, domain.ErrCredentialNotFound
}

func (i *stubIssuer) calls() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.addresses)
}

type stubEvents struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (e *stubEvents) Publish(_ context.Context, channel string, _ any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.channels = append(e.channels, channel)
	return nil
}

// plainEncoder stores passwords with a marker prefix.
type plainEncoder struct{}

func (plainEncoder) Encode(plain string) (string, error) { return "enc:" + plain, nil }

func (plainEncoder) Verify(stored, plain string) (bool, error) {
	if !strings.HasPrefix(stored, "enc:") {
		return false, errors.New("unknown encoding")
	}
	return stored == "enc:"+plain, nil
}
