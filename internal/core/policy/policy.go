// Package policy is the access policy gate: a fixed table of which roles may use
// which resource, and the membership check applied to a caller's validated role.
package policy

import (
	"fmt"
	"slices"

	"github.com/crmhub/crm-system/internal/core/domain"
)

// Resource names a group of endpoints sharing one role requirement.
type Resource string

const (
	Users              Resource = "users"
	Analytics          Resource = "analytics"
	CustomersRead      Resource = "customers:read"
	CustomersWrite     Resource = "customers:write"
	InteractionsRead   Resource = "interactions:read"
	InteractionsWrite  Resource = "interactions:write"
	InteractionsDelete Resource = "interactions:delete"
)

var requirements = map[Resource][]domain.Role{
	Users:              {domain.RoleAdmin},
	Analytics:          {domain.RoleAdmin, domain.RoleAnalyst},
	CustomersRead:      {domain.RoleAdmin, domain.RoleSalesRep, domain.RoleAnalyst},
	CustomersWrite:     {domain.RoleAdmin},
	InteractionsRead:   {domain.RoleAdmin, domain.RoleSalesRep, domain.RoleAnalyst},
	InteractionsWrite:  {domain.RoleAdmin, domain.RoleSalesRep, domain.RoleAnalyst},
	InteractionsDelete: {domain.RoleAdmin},
}

// Required returns the roles allowed to use r. Unknown resources allow nobody.
func Required(r Resource) []domain.Role {
	return slices.Clone(requirements[r])
}

// Authorize reports whether actual is non-nil and a member of required.
func Authorize(required []domain.Role, actual *domain.Role) bool {
	if actual == nil {
		return false
	}
	return slices.Contains(required, *actual)
}

// Evaluate checks actual against the requirement of resource r.
func Evaluate(r Resource, actual *domain.Role) domain.AccessDecision {
	required := requirements[r]
	if Authorize(required, actual) {
		return domain.AccessDecision{Allowed: true}
	}
	if actual == nil {
		return domain.AccessDecision{Reason: "no role presented"}
	}
	return domain.AccessDecision{
		Reason: fmt.Sprintf("role %s may not access %s", *actual, r),
	}
}
