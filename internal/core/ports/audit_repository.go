package ports

import (
	"context"

	"github.com/crmhub/crm-system/internal/core/domain"
)

// AuditRepository persists login audit events.
type AuditRepository interface {
	InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error
}
