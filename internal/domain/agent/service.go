package agent

import (
	"context"
	"strings"

	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/utils/idgen"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

// CreateInput carries the user-supplied fields for a new agent.
type CreateInput struct {
	Name         string
	SystemPrompt string
	Model        string
}

// Service enforces tenant plan limits around agent CRUD.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new active agent for the tenant. Creation is gated on the
// tenant's plan: once the active agent count reaches MaxAgents the request is
// rejected, never inserted.
func (s *Service) Create(ctx context.Context, t *tenant.Tenant, input CreateInput) (*Agent, error) {
	name := strings.TrimSpace(input.Name)
	prompt := strings.TrimSpace(input.SystemPrompt)
	if name == "" || prompt == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "name and system prompt are required", nil)
	}

	count, err := s.repo.CountActiveByTenant(ctx, t.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count agents")
	}
	if count >= int64(t.MaxAgents) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "agent limit reached for the current plan", nil)
	}

	model := strings.TrimSpace(input.Model)
	if model == "" {
		model = DefaultModel
	}

	publicID, err := idgen.GenerateSecureID("agent", 16)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate agent id", err)
	}

	a := &Agent{
		PublicID:     publicID,
		TenantID:     t.ID,
		Name:         name,
		Model:        model,
		SystemPrompt: prompt,
		Active:       true,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create agent")
	}
	return a, nil
}

// List returns the tenant's agents.
func (s *Service) List(ctx context.Context, t *tenant.Tenant) ([]*Agent, error) {
	agents, err := s.repo.ListByTenant(ctx, t.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list agents")
	}
	return agents, nil
}

// Find loads one of the tenant's agents by public id.
func (s *Service) Find(ctx context.Context, t *tenant.Tenant, publicID string) (*Agent, error) {
	a, err := s.repo.FindByPublicID(ctx, t.ID, publicID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "agent not found", err)
	}
	return a, nil
}

// Delete removes an agent. Deletion is unrestricted by plan.
func (s *Service) Delete(ctx context.Context, t *tenant.Tenant, publicID string) error {
	if err := s.repo.Delete(ctx, t.ID, publicID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete agent")
	}
	return nil
}
