package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditResourceBusiness is the resource name of onboarding audit entries.
const AuditResourceBusiness = "business"

type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	ActorType  string         `json:"actor_type"` // "user", "system"
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"` // "onboarding.completed", "onboarding.failed"
	Resource   string         `json:"resource"`
	ResourceID string         `json:"resource_id"` // business id, or the FSSAI license when no row exists yet
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByResource(ctx context.Context, resource, resourceID string) ([]*AuditEntry, error)
}
