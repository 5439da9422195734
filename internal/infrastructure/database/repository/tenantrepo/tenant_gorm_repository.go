package tenantrepo

import (
	"context"

	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/infrastructure/database/dbschema"
	"agenthub/services/chat-api/internal/infrastructure/database/transaction"
	"agenthub/services/chat-api/internal/utils/functional"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

type TenantGormRepository struct {
	db *transaction.Database
}

var _ tenant.Repository = (*TenantGormRepository)(nil)

func NewTenantGormRepository(db *transaction.Database) tenant.Repository {
	return &TenantGormRepository{db}
}

// Create implements tenant.Repository.
func (repo *TenantGormRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	model := dbschema.NewSchemaTenant(t)
	if err := repo.db.GetTx(ctx).WithContext(ctx).Create(model).Error; err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to create tenant")
	}
	t.ID = model.ID
	t.CreatedAt = model.CreatedAt
	t.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByPublicID implements tenant.Repository.
func (repo *TenantGormRepository) FindByPublicID(ctx context.Context, publicID string) (*tenant.Tenant, error) {
	var model dbschema.Tenant
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&model).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to find tenant by public ID")
	}
	return model.EtoD(), nil
}

// List implements tenant.Repository.
func (repo *TenantGormRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	var rows []*dbschema.Tenant
	if err := repo.db.GetTx(ctx).WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list tenants")
	}
	return functional.Map(rows, func(item *dbschema.Tenant) *tenant.Tenant {
		return item.EtoD()
	}), nil
}

// UpdatePlan implements tenant.Repository.
func (repo *TenantGormRepository) UpdatePlan(ctx context.Context, id uint, plan tenant.Plan, limits tenant.PlanLimits) error {
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Model(&dbschema.Tenant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan":           string(plan),
			"max_agents":     limits.MaxAgents,
			"retention_days": limits.RetentionDays,
		}).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to update tenant plan")
	}
	return nil
}

// UpdateCredential implements tenant.Repository.
func (repo *TenantGormRepository) UpdateCredential(ctx context.Context, id uint, provider tenant.CredentialProvider, encryptedBlob string) error {
	column := "encrypted_openai_key"
	if provider == tenant.ProviderAnthropic {
		column = "encrypted_anthropic_key"
	}
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Model(&dbschema.Tenant{}).
		Where("id = ?", id).
		Update(column, encryptedBlob).Error
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to update tenant credential")
	}
	return nil
}
