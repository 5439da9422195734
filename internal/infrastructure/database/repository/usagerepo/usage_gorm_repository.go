package usagerepo

import (
	"context"

	"github.com/shopspring/decimal"

	"agenthub/services/chat-api/internal/domain/usage"
	"agenthub/services/chat-api/internal/infrastructure/database/dbschema"
	"agenthub/services/chat-api/internal/infrastructure/database/transaction"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

type UsageGormRepository struct {
	db *transaction.Database
}

var _ usage.Repository = (*UsageGormRepository)(nil)

func NewUsageGormRepository(db *transaction.Database) usage.Repository {
	return &UsageGormRepository{db}
}

// ListByTenant implements usage.Repository.
func (repo *UsageGormRepository) ListByTenant(ctx context.Context, tenantID uint, limit int) ([]*usage.Record, error) {
	tx := repo.db.GetTx(ctx).WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var rows []*dbschema.UsageRecord
	if err := tx.Find(&rows).Error; err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list usage records")
	}

	records := make([]*usage.Record, 0, len(rows))
	for _, row := range rows {
		record, err := row.EtoD()
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to decode usage metadata")
		}
		records = append(records, record)
	}
	return records, nil
}

// SummarizeByTenant implements usage.Repository.
func (repo *UsageGormRepository) SummarizeByTenant(ctx context.Context, tenantID uint) (*usage.Summary, error) {
	var row struct {
		TotalQuantity int64
		TotalCost     decimal.Decimal
		RecordCount   int64
	}
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Model(&dbschema.UsageRecord{}).
		Select("COALESCE(SUM(quantity), 0) AS total_quantity, COALESCE(SUM(estimated_cost), 0) AS total_cost, COUNT(*) AS record_count").
		Where("tenant_id = ?", tenantID).
		Scan(&row).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to summarize usage")
	}
	return &usage.Summary{
		TotalQuantity: row.TotalQuantity,
		TotalCost:     row.TotalCost,
		RecordCount:   row.RecordCount,
	}, nil
}
