package domain

// GuestVisitStatus tracks a guest's physical presence on site.
type GuestVisitStatus string

const (
	VisitPending GuestVisitStatus = "pending"
	VisitEntered GuestVisitStatus = "entered"
	VisitExited  GuestVisitStatus = "exited"
)

var guestTransitions = map[GuestVisitStatus]GuestVisitStatus{
	VisitPending: VisitEntered,
	VisitEntered: VisitExited,
}

// CanTransitionTo reports whether the guest may move to next.
func (s GuestVisitStatus) CanTransitionTo(next GuestVisitStatus) bool {
	return guestTransitions[s] == next
}

// Guest accompanies a visit request.
type Guest struct {
	ID          string           `json:"id"`
	FullName    string           `json:"full_name"`
	Email       string           `json:"email"`
	PhoneNumber string           `json:"phone_number"`
	IsForeign   bool             `json:"is_foreign"`
	VisitStatus GuestVisitStatus `json:"visit_status"`
}
