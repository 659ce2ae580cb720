package domain

import "time"

// LoginState is the state of a single login attempt.
//
//	Unauthenticated → CredentialsSubmitted → Authenticated | Rejected
type LoginState int

const (
	LoginUnauthenticated LoginState = iota
	LoginCredentialsSubmitted
	LoginAuthenticated
	LoginRejected
)

func (s LoginState) String() string {
	switch s {
	case LoginCredentialsSubmitted:
		return "credentials_submitted"
	case LoginAuthenticated:
		return "authenticated"
	case LoginRejected:
		return "rejected"
	default:
		return "unauthenticated"
	}
}

// Terminal reports whether no further transition is possible.
func (s LoginState) Terminal() bool {
	return s == LoginAuthenticated || s == LoginRejected
}

// LoginOutcome records why a login attempt ended the way it did. Only the audit
// trail sees it; callers get a uniform failure.
type LoginOutcome string

const (
	LoginOutcomeSuccess     LoginOutcome = "success"
	LoginOutcomeUnknownUser LoginOutcome = "unknown_user"
	LoginOutcomeBadPassword LoginOutcome = "bad_password"
)

// LoginEvent is an audit record for one login attempt.
type LoginEvent struct {
	Username string
	Outcome  LoginOutcome
	State    LoginState
	Role     Role // empty unless Outcome is success
	At       time.Time
}
