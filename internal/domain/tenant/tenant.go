package tenant

import (
	"context"
	"time"
)

// Plan identifies a subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// PlanLimits carries the per-tier caps applied to a tenant.
type PlanLimits struct {
	MaxAgents     int
	RetentionDays int
}

// LimitsForPlan returns the caps for a tier. Unknown plans fall back to free.
func LimitsForPlan(plan Plan) PlanLimits {
	switch plan {
	case PlanPro:
		return PlanLimits{MaxAgents: 10, RetentionDays: 365}
	default:
		return PlanLimits{MaxAgents: 1, RetentionDays: 30}
	}
}

// CredentialProvider names an upstream provider a tenant may hold a key for.
type CredentialProvider string

const (
	ProviderOpenAI    CredentialProvider = "openai"
	ProviderAnthropic CredentialProvider = "anthropic"
)

// Tenant is an isolated company owning agents, conversations and credentials.
// Provider API keys are stored encrypted only; at most one per provider.
type Tenant struct {
	ID            uint
	PublicID      string
	Name          string
	Plan          Plan
	MaxAgents     int
	RetentionDays int

	EncryptedOpenAIKey    *string
	EncryptedAnthropicKey *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EncryptedCredential returns the stored blob for a provider, if any.
func (t *Tenant) EncryptedCredential(provider CredentialProvider) (string, bool) {
	var blob *string
	switch provider {
	case ProviderOpenAI:
		blob = t.EncryptedOpenAIKey
	case ProviderAnthropic:
		blob = t.EncryptedAnthropicKey
	}
	if blob == nil || *blob == "" {
		return "", false
	}
	return *blob, true
}

// RetentionCutoff returns the instant before which chat history falls outside
// the tenant's retention window.
func (t *Tenant) RetentionCutoff(now time.Time) time.Time {
	days := t.RetentionDays
	if days <= 0 {
		days = LimitsForPlan(PlanFree).RetentionDays
	}
	return now.AddDate(0, 0, -days)
}

// Repository defines storage operations for tenants.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	FindByPublicID(ctx context.Context, publicID string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
	UpdatePlan(ctx context.Context, id uint, plan Plan, limits PlanLimits) error
	UpdateCredential(ctx context.Context, id uint, provider CredentialProvider, encryptedBlob string) error
}
