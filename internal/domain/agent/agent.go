package agent

import (
	"context"
	"time"
)

// DefaultModel is assigned when an agent is created without an explicit model.
const DefaultModel = "gpt-4o-mini"

// Agent is a named (model, system prompt) pair usable as a chat persona.
type Agent struct {
	ID           uint
	PublicID     string
	TenantID     uint
	Name         string
	Model        string
	SystemPrompt string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository defines storage operations for agents.
type Repository interface {
	Create(ctx context.Context, a *Agent) error
	ListByTenant(ctx context.Context, tenantID uint) ([]*Agent, error)
	FindByPublicID(ctx context.Context, tenantID uint, publicID string) (*Agent, error)
	CountActiveByTenant(ctx context.Context, tenantID uint) (int64, error)
	Delete(ctx context.Context, tenantID uint, publicID string) error
}
