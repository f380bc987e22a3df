package domain

import "time"

// RequestStatus represents the lifecycle state of a visit request.
type RequestStatus string

const (
	StatusNew      RequestStatus = "new"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
	// StatusDeleted is reserved; deletion removes the document instead of
	// transitioning to it.
	StatusDeleted RequestStatus = "deleted"
)

// validTransitions defines the review state machine.
var validTransitions = map[RequestStatus][]RequestStatus{
	StatusNew: {StatusAccepted, StatusRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further review is possible.
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ParseRequestStatus accepts the status names used on the wire.
func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch st := RequestStatus(s); st {
	case StatusNew, StatusAccepted, StatusRejected:
		return st, true
	}
	return "", false
}

// UserRef is the part of a user embedded in request views.
type UserRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// VisitRequest is the aggregate root. Guests are stored with it and share
// its lifetime.
type VisitRequest struct {
	ID                 string
	Purpose            string
	Place              string
	VisitAt            time.Time
	Comment            string
	AppellantID        string
	Appellant          *UserRef
	ConfirmingID       string
	Status             RequestStatus
	CredentialLocation string
	Guests             []Guest
	CreatedAt          time.Time
	ReviewedAt         *time.Time
}

// Guest finds a guest by id.
func (r *VisitRequest) Guest(id string) (*Guest, bool) {
	for i := range r.Guests {
		if r.Guests[i].ID == id {
			return &r.Guests[i], true
		}
	}
	return nil, false
}
