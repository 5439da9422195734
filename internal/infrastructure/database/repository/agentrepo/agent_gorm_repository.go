package agentrepo

import (
	"context"

	"agenthub/services/chat-api/internal/domain/agent"
	"agenthub/services/chat-api/internal/infrastructure/database/dbschema"
	"agenthub/services/chat-api/internal/infrastructure/database/transaction"
	"agenthub/services/chat-api/internal/utils/functional"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

type AgentGormRepository struct {
	db *transaction.Database
}

var _ agent.Repository = (*AgentGormRepository)(nil)

func NewAgentGormRepository(db *transaction.Database) agent.Repository {
	return &AgentGormRepository{db}
}

// Create implements agent.Repository.
func (repo *AgentGormRepository) Create(ctx context.Context, a *agent.Agent) error {
	model := dbschema.NewSchemaAgent(a)
	if err := repo.db.GetTx(ctx).WithContext(ctx).Create(model).Error; err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to create agent")
	}
	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

// ListByTenant implements agent.Repository.
func (repo *AgentGormRepository) ListByTenant(ctx context.Context, tenantID uint) ([]*agent.Agent, error) {
	var rows []*dbschema.Agent
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list agents")
	}
	return functional.Map(rows, func(item *dbschema.Agent) *agent.Agent {
		return item.EtoD()
	}), nil
}

// FindByPublicID implements agent.Repository.
func (repo *AgentGormRepository) FindByPublicID(ctx context.Context, tenantID uint, publicID string) (*agent.Agent, error) {
	var model dbschema.Agent
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Where("tenant_id = ? AND public_id = ? AND active = ?", tenantID, publicID, true).
		First(&model).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to find agent by public ID")
	}
	return model.EtoD(), nil
}

// CountActiveByTenant implements agent.Repository.
func (repo *AgentGormRepository) CountActiveByTenant(ctx context.Context, tenantID uint) (int64, error) {
	var count int64
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Model(&dbschema.Agent{}).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Count(&count).Error
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to count agents")
	}
	return count, nil
}

// Delete implements agent.Repository. Agents are soft-deactivated so past
// conversations keep their agent reference.
func (repo *AgentGormRepository) Delete(ctx context.Context, tenantID uint, publicID string) error {
	result := repo.db.GetTx(ctx).WithContext(ctx).
		Model(&dbschema.Agent{}).
		Where("tenant_id = ? AND public_id = ? AND active = ?", tenantID, publicID, true).
		Update("active", false)
	if result.Error != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerRepository, result.Error, "failed to delete agent")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "agent not found", nil)
	}
	return nil
}
