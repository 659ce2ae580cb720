package domain

import "time"

// Claims is the payload embedded in an issued token.
type Claims struct {
	Subject   string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessDecision is the outcome of an access policy check. It is never stored.
type AccessDecision struct {
	Allowed bool
	Reason  string
}
