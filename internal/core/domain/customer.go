package domain

import "time"

// CustomerType classifies a customer account.
type CustomerType string

const (
	CustomerRegular CustomerType = "REGULAR"
	CustomerPremium CustomerType = "PREMIUM"
	CustomerVIP     CustomerType = "VIP"
)

// Valid reports whether t is a known customer type.
func (t CustomerType) Valid() bool {
	switch t {
	case CustomerRegular, CustomerPremium, CustomerVIP:
		return true
	}
	return false
}

// Customer is a CRM customer record.
type Customer struct {
	ID               string       `json:"id"`
	FirstName        string       `json:"firstName"`
	LastName         string       `json:"lastName"`
	Email            string       `json:"email"`
	PhoneNumber      string       `json:"phoneNumber,omitempty"`
	CustomerType     CustomerType `json:"customerType"`
	RegistrationDate time.Time    `json:"registrationDate"`
}
