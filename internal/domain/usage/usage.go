package usage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one append-only usage/audit row for a chat turn.
type Record struct {
	ID             uint
	TenantID       uint
	ConversationID uint
	Resource       string // provider name: "openai" | "anthropic"
	Quantity       int    // approximate token count
	Model          string
	AgentPublicID  *string
	EstimatedCost  decimal.Decimal
	CreatedAt      time.Time
}

// Summary aggregates a tenant's recorded usage.
type Summary struct {
	TotalQuantity int64           `json:"total_tokens"`
	TotalCost     decimal.Decimal `json:"estimated_cost_usd"`
	RecordCount   int64           `json:"record_count"`
}

// Repository defines storage operations for usage records. Insertion happens
// inside the turn transaction (see conversation.TurnStore); this interface
// covers the read side.
type Repository interface {
	ListByTenant(ctx context.Context, tenantID uint, limit int) ([]*Record, error)
	SummarizeByTenant(ctx context.Context, tenantID uint) (*Summary, error)
}
