package domain

import "time"

// TokenStatus is the lifecycle state of an activation token.
type TokenStatus string

const (
	TokenPending  TokenStatus = "pending"
	TokenConsumed TokenStatus = "consumed"
)

// TokenPurpose tells which flow a token belongs to.
type TokenPurpose string

const (
	PurposeRegistration     TokenPurpose = "registration"
	PurposePasswordRecovery TokenPurpose = "password_recovery"
)

// ActivationToken is a single-use secret linked to a target user. Once
// consumed it never authorizes an action again.
type ActivationToken struct {
	ID         string
	Value      string
	UserID     string
	IssuedBy   string
	Purpose    TokenPurpose
	Status     TokenStatus
	CreatedAt  time.Time
	ConsumedAt *time.Time
}
