package domain

import "errors"

// Authentication
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrMissingToken       = errors.New("missing token")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenBadSignature  = errors.New("token signature invalid")
	ErrTokenExpired       = errors.New("token expired")
)

// Authorization
var ErrForbidden = errors.New("access forbidden")

// Users
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already exists")
	ErrLastAdmin    = errors.New("cannot remove the last admin user")
	ErrInvalidRole  = errors.New("invalid role")
)

// CRM resources
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerExists      = errors.New("customer with this email already exists")
	ErrInteractionNotFound = errors.New("interaction not found")
)
