package agent

import (
	"context"
	"testing"

	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

type fakeAgentRepo struct {
	agents      []*Agent
	activeCount int64
	created     []*Agent
}

func (f *fakeAgentRepo) Create(ctx context.Context, a *Agent) error {
	f.created = append(f.created, a)
	f.agents = append(f.agents, a)
	return nil
}

func (f *fakeAgentRepo) ListByTenant(ctx context.Context, tenantID uint) ([]*Agent, error) {
	return f.agents, nil
}

func (f *fakeAgentRepo) FindByPublicID(ctx context.Context, tenantID uint, publicID string) (*Agent, error) {
	for _, a := range f.agents {
		if a.PublicID == publicID {
			return a, nil
		}
	}
	return nil, context.Canceled
}

func (f *fakeAgentRepo) CountActiveByTenant(ctx context.Context, tenantID uint) (int64, error) {
	return f.activeCount, nil
}

func (f *fakeAgentRepo) Delete(ctx context.Context, tenantID uint, publicID string) error {
	return nil
}

func freeTenant() *tenant.Tenant {
	limits := tenant.LimitsForPlan(tenant.PlanFree)
	return &tenant.Tenant{
		ID:            1,
		PublicID:      "tenant_free",
		Plan:          tenant.PlanFree,
		MaxAgents:     limits.MaxAgents,
		RetentionDays: limits.RetentionDays,
	}
}

func TestCreateAgentUnderLimit(t *testing.T) {
	repo := &fakeAgentRepo{activeCount: 0}
	svc := NewService(repo)

	a, err := svc.Create(context.Background(), freeTenant(), CreateInput{
		Name:         "HR Specialist",
		SystemPrompt: "You are a helpful HR assistant.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Model != DefaultModel {
		t.Fatalf("expected default model %q, got %q", DefaultModel, a.Model)
	}
	if !a.Active {
		t.Fatal("expected new agent to be active")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.created))
	}
}

func TestCreateAgentAtPlanLimit(t *testing.T) {
	repo := &fakeAgentRepo{activeCount: 1} // free plan cap is 1
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), freeTenant(), CreateInput{
		Name:         "Second Agent",
		SystemPrompt: "prompt",
	})
	if !platformerrors.IsValidationError(err) {
		t.Fatalf("expected validation error at plan limit, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("agent must not be inserted at plan limit, got %d inserts", len(repo.created))
	}
}

func TestCreateAgentProLimit(t *testing.T) {
	limits := tenant.LimitsForPlan(tenant.PlanPro)
	pro := &tenant.Tenant{ID: 2, Plan: tenant.PlanPro, MaxAgents: limits.MaxAgents}

	repo := &fakeAgentRepo{activeCount: 9}
	svc := NewService(repo)
	if _, err := svc.Create(context.Background(), pro, CreateInput{Name: "n", SystemPrompt: "p"}); err != nil {
		t.Fatalf("expected creation below pro cap, got %v", err)
	}

	repo = &fakeAgentRepo{activeCount: 10}
	svc = NewService(repo)
	if _, err := svc.Create(context.Background(), pro, CreateInput{Name: "n", SystemPrompt: "p"}); err == nil {
		t.Fatal("expected rejection at pro cap")
	}
}

func TestCreateAgentValidation(t *testing.T) {
	svc := NewService(&fakeAgentRepo{})

	cases := []CreateInput{
		{Name: "", SystemPrompt: "prompt"},
		{Name: "name", SystemPrompt: ""},
		{Name: "   ", SystemPrompt: "  "},
	}
	for _, input := range cases {
		if _, err := svc.Create(context.Background(), freeTenant(), input); !platformerrors.IsValidationError(err) {
			t.Fatalf("input %+v: expected validation error, got %v", input, err)
		}
	}
}
