package dbschema

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"agenthub/services/chat-api/internal/domain/usage"
	"agenthub/services/chat-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(UsageRecord{})
}

// UsageRecord represents the database schema for the append-only usage audit.
// Model and agent references travel in the metadata document.
type UsageRecord struct {
	BaseModel
	TenantID       uint            `gorm:"index:idx_usage_tenant_created;not null"`
	Tenant         Tenant          `gorm:"foreignKey:TenantID"`
	ConversationID uint            `gorm:"index;not null"`
	Resource       string          `gorm:"type:varchar(50);not null"`
	Quantity       int             `gorm:"not null"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	EstimatedCost  decimal.Decimal `gorm:"type:numeric(18,10);not null"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}

type usageMetadata struct {
	Model   string  `json:"model"`
	AgentID *string `json:"agent_id,omitempty"`
}

// NewSchemaUsageRecord creates a database schema from a domain usage record
func NewSchemaUsageRecord(r *usage.Record) (*UsageRecord, error) {
	metadata, err := json.Marshal(usageMetadata{
		Model:   r.Model,
		AgentID: r.AgentPublicID,
	})
	if err != nil {
		return nil, err
	}

	return &UsageRecord{
		BaseModel: BaseModel{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
		},
		TenantID:       r.TenantID,
		ConversationID: r.ConversationID,
		Resource:       r.Resource,
		Quantity:       r.Quantity,
		Metadata:       datatypes.JSON(metadata),
		EstimatedCost:  r.EstimatedCost,
	}, nil
}

// EtoD converts database schema to domain usage record (Entity to Domain)
func (r *UsageRecord) EtoD() (*usage.Record, error) {
	var metadata usageMetadata
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &metadata); err != nil {
			return nil, err
		}
	}

	return &usage.Record{
		ID:             r.ID,
		TenantID:       r.TenantID,
		ConversationID: r.ConversationID,
		Resource:       r.Resource,
		Quantity:       r.Quantity,
		Model:          metadata.Model,
		AgentPublicID:  metadata.AgentID,
		EstimatedCost:  r.EstimatedCost,
		CreatedAt:      r.CreatedAt,
	}, nil
}
