package domain

import "time"

// InteractionType is the kind of contact recorded with a customer.
type InteractionType string

const (
	InteractionPurchase  InteractionType = "PURCHASE"
	InteractionInquiry   InteractionType = "INQUIRY"
	InteractionSupport   InteractionType = "SUPPORT"
	InteractionComplaint InteractionType = "COMPLAINT"
)

func (t InteractionType) Valid() bool {
	switch t {
	case InteractionPurchase, InteractionInquiry, InteractionSupport, InteractionComplaint:
		return true
	}
	return false
}

// InteractionStatus tracks whether an interaction still needs follow-up.
type InteractionStatus string

const (
	InteractionOpen    InteractionStatus = "OPEN"
	InteractionClosed  InteractionStatus = "CLOSED"
	InteractionPending InteractionStatus = "PENDING"
)

func (s InteractionStatus) Valid() bool {
	switch s {
	case InteractionOpen, InteractionClosed, InteractionPending:
		return true
	}
	return false
}

// Interaction is a logged contact with a customer.
type Interaction struct {
	ID              string            `json:"id"`
	CustomerID      string            `json:"customerId"`
	InteractionType InteractionType   `json:"interactionType"`
	Description     string            `json:"description,omitempty"`
	Status          InteractionStatus `json:"status"`
	InteractionDate time.Time         `json:"interactionDate"`
}
