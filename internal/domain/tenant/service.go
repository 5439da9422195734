package tenant

import (
	"context"
	"strings"

	"agenthub/services/chat-api/internal/infrastructure/vault"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

// Service owns tenant-level operations: plan changes and credential storage.
type Service struct {
	repo  Repository
	vault *vault.Vault
}

func NewService(repo Repository, v *vault.Vault) *Service {
	return &Service{repo: repo, vault: v}
}

// Resolve loads the tenant for an authenticated principal's tenant id.
func (s *Service) Resolve(ctx context.Context, publicID string) (*Tenant, error) {
	if strings.TrimSpace(publicID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "tenant not found", nil)
	}
	t, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "tenant not found", err)
	}
	return t, nil
}

// Bootstrap ensures a tenant with the given public id exists, creating a
// free-plan tenant when it does not. Used to seed a default tenant at startup;
// a tenant that already exists is returned untouched.
func (s *Service) Bootstrap(ctx context.Context, publicID, name string) (*Tenant, error) {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "tenant id is required", nil)
	}

	if t, err := s.repo.FindByPublicID(ctx, publicID); err == nil {
		return t, nil
	}

	if strings.TrimSpace(name) == "" {
		name = publicID
	}
	limits := LimitsForPlan(PlanFree)
	t := &Tenant{
		PublicID:      publicID,
		Name:          name,
		Plan:          PlanFree,
		MaxAgents:     limits.MaxAgents,
		RetentionDays: limits.RetentionDays,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to bootstrap tenant")
	}
	return t, nil
}

// SaveCredential validates, encrypts and stores a provider API key.
// Plaintext keys never leave this function.
func (s *Service) SaveCredential(ctx context.Context, t *Tenant, provider CredentialProvider, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "API key is required", nil)
	}

	switch provider {
	case ProviderOpenAI:
		if !strings.HasPrefix(apiKey, "sk-") {
			return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, `OpenAI API keys must start with "sk-"`, nil)
		}
	case ProviderAnthropic:
		// Anthropic key shapes vary across generations; accept any non-empty key.
	default:
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown credential provider", nil)
	}

	blob, err := s.vault.Encrypt(apiKey)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to encrypt API key", err)
	}

	if err := s.repo.UpdateCredential(ctx, t.ID, provider, blob); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store credential")
	}
	return nil
}

// DecryptCredential resolves and decrypts the tenant's key for a provider.
func (s *Service) DecryptCredential(ctx context.Context, t *Tenant, provider CredentialProvider) (string, error) {
	blob, ok := t.EncryptedCredential(provider)
	if !ok {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeCredentialMissing, "API key not configured for provider", nil)
	}

	apiKey, err := s.vault.Decrypt(blob)
	if err != nil {
		// Wrong or rotated secret, or a corrupted row. Operator-facing.
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeCredentialCorrupt, "failed to decrypt stored API key", err)
	}
	return apiKey, nil
}

// ChangePlan moves a tenant between tiers and applies the tier's caps.
func (s *Service) ChangePlan(ctx context.Context, t *Tenant, plan Plan) error {
	if plan != PlanFree && plan != PlanPro {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown plan", nil)
	}

	limits := LimitsForPlan(plan)
	if err := s.repo.UpdatePlan(ctx, t.ID, plan, limits); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update plan")
	}

	t.Plan = plan
	t.MaxAgents = limits.MaxAgents
	t.RetentionDays = limits.RetentionDays
	return nil
}
