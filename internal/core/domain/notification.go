package domain

// NotificationKind labels a notification intent.
type NotificationKind string

const (
	NotifyGuestPass        NotificationKind = "guest_pass"
	NotifyRequestApproved  NotificationKind = "request_approved"
	NotifyRequestRejected  NotificationKind = "request_rejected"
	NotifyRegistration     NotificationKind = "account_registration"
	NotifyPasswordRecovery NotificationKind = "password_recovery"
)

// Notification is an intent emitted after a committed state change. A
// dispatcher delivers it asynchronously.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	RequestID string           `json:"request_id,omitempty"`
	Address   string           `json:"address"`
	Subject   string           `json:"subject"`
	Body      string           `json:"body"`
}
