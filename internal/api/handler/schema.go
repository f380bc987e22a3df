package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// --- Accounts ---

type createAccountRequest struct {
	FullName string   `json:"full_name" validate:"required,max=200"`
	Email    string   `json:"email"     validate:"required,email"`
	Roles    []string `json:"roles"     validate:"dive,oneof=employee security confirming admin"`
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type recoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type userResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Activated bool      `json:"activated"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type userListResponse struct {
	Items []userResponse `json:"items"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Visit requests ---

type guestRequest struct {
	FullName    string `json:"full_name"    validate:"required,max=200"`
	Email       string `json:"email"        validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	IsForeign   bool   `json:"is_foreign"`
}

type createRequestRequest struct {
	Purpose string         `json:"purpose"  validate:"required,max=500"`
	Place   string         `json:"place"    validate:"required,max=200"`
	VisitAt time.Time      `json:"visit_at" validate:"required"`
	Guests  []guestRequest `json:"guests"   validate:"required,min=1,dive"`
}

type reviewRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
	Comment  string `json:"comment"  validate:"max=2000"`
}

type appellantResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type guestResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	IsForeign   bool   `json:"is_foreign"`
	VisitStatus string `json:"visit_status"`
}

type requestLinks struct {
	Self       string `json:"self"`
	Credential string `json:"credential,omitempty"`
}

type requestResponse struct {
	ID           string             `json:"id"`
	Purpose      string             `json:"purpose"`
	Place        string             `json:"place"`
	VisitAt      time.Time          `json:"visit_at"`
	Comment      string             `json:"comment,omitempty"`
	Status       string             `json:"status"`
	Appellant    *appellantResponse `json:"appellant,omitempty"`
	ConfirmingID string             `json:"confirming_id,omitempty"`
	Guests       []guestResponse    `json:"guests"`
	CreatedAt    time.Time          `json:"created_at"`
	ReviewedAt   *time.Time         `json:"reviewed_at,omitempty"`
	Links        requestLinks       `json:"_links"`
}

type requestListResponse struct {
	Items   []requestResponse `json:"items"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	HasMore bool              `json:"has_more"`
}

// --- Credentials ---

type credentialResponse struct {
	Handle              string    `json:"handle"`
	Credential          string    `json:"credential"`
	VerificationAddress string    `json:"verification_address"`
	IssuedAt            time.Time `json:"issued_at"`
}
