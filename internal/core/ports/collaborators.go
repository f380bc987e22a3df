package ports

import (
	"context"
	"time"

	"github.com/tiu-access/visit-access/internal/core/domain"
)

// Notifier delivers a message to an address.
type Notifier interface {
	Send(ctx context.Context, address, subject, body string) error
}

// NotificationQueue accepts notification intents for asynchronous delivery.
type NotificationQueue interface {
	Enqueue(ctx context.Context, n domain.Notification) error
}

// IssuedCredential is what the engine gets back from the issuer. Only
// Location is persisted.
type IssuedCredential struct {
	Handle   string
	Location string
}

// StoredCredential is a previously issued credential.
type StoredCredential struct {
	Handle              string    `json:"handle"`
	Credential          string    `json:"credential"`
	VerificationAddress string    `json:"verification_address"`
	IssuedAt            time.Time `json:"issued_at"`
}

// CredentialIssuer produces a scannable credential for an approved request.
type CredentialIssuer interface {
	Issue(ctx context.Context, verificationAddress string) (IssuedCredential, error)
	Lookup(ctx context.Context, handle string) (*StoredCredential, error)
}

// EventPublisher fans review events out to interested subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// PasswordEncoder turns a plaintext password into its stored form and
// checks candidates against it.
type PasswordEncoder interface {
	Encode(plain string) (string, error)
	Verify(stored, plain string) (bool, error)
}
