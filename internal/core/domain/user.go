package domain

import "time"

// User models an account holder. Password is empty until the account owner
// completes registration.
type User struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Roles     RoleSet   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activated reports whether the user has a stored credential.
func (u *User) Activated() bool {
	return u.Password != ""
}

// Actor is the authenticated identity behind an operation. Roles is the set
// resolved for the current call.
type Actor struct {
	ID    string
	Roles RoleSet
}
