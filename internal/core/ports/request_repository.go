package ports

import (
	"context"
	"iter"
	"time"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

// RequestFilter carries the query parameters for listing visit requests.
// AppellantID is only ever set by the service (employee scoping).
type RequestFilter struct {
	Status        domain.RequestStatus // optional
	GuestName     string               // optional: substring of any guest full name
	AppellantName string               // optional: substring of the appellant's full name
	AppellantID   string               // optional: exact appellant
}

// ReviewUpdate is the payload of a review transition.
type ReviewUpdate struct {
	From         domain.RequestStatus
	To           domain.RequestStatus
	ConfirmingID string
	Comment      string
	At           time.Time
}

// RequestRepository defines persistence operations for visit requests.
type RequestRepository interface {
	// Create stores the request together with its guests in one write.
	Create(ctx context.Context, r *domain.VisitRequest) error
	FindByID(ctx context.Context, id string) (*domain.VisitRequest, error)
	// Transition applies the review only while the stored status still equals
	// u.From. A lost race yields domain.ErrInvalidState.
	Transition(ctx context.Context, id string, u ReviewUpdate) (*domain.VisitRequest, error)
	SetCredentialLocation(ctx context.Context, id, location string) error
	// SetGuestVisitStatus moves one guest from -> to with the same
	// compare-and-swap discipline as Transition.
	SetGuestVisitStatus(ctx context.Context, requestID, guestID string, from, to domain.GuestVisitStatus) error
	// Delete removes the request and its guests.
	Delete(ctx context.Context, id string) error
	// List returns matching requests newest first. The sequence is lazy and
	// every range over it re-runs the query.
	List(ctx context.Context, filter RequestFilter) iter.Seq2[*domain.VisitRequest, error]
}
