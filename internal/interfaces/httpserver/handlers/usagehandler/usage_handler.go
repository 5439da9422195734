package usagehandler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/domain/usage"
	middleware "agenthub/services/chat-api/internal/interfaces/httpserver/middlewares"
	"agenthub/services/chat-api/internal/interfaces/httpserver/responses"
)

const defaultRecordLimit = 100

// UsageHandler serves the tenant usage audit.
type UsageHandler struct {
	tenants *tenant.Service
	usage   usage.Repository
}

func NewUsageHandler(tenants *tenant.Service, usageRepo usage.Repository) *UsageHandler {
	return &UsageHandler{tenants: tenants, usage: usageRepo}
}

// RecordResponse is the public representation of one usage record.
type RecordResponse struct {
	ConversationID uint            `json:"conversation_id"`
	Resource       string          `json:"resource"`
	Quantity       int             `json:"tokens"`
	Model          string          `json:"model"`
	AgentID        *string         `json:"agent_id,omitempty"`
	EstimatedCost  decimal.Decimal `json:"estimated_cost_usd"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Get handles GET /v1/usage: summary plus the most recent records.
func (h *UsageHandler) Get(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, responses.ErrorResponse{Error: "unauthorized"})
		return
	}
	t, err := h.tenants.Resolve(c.Request.Context(), principal.TenantPublicID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	limit := defaultRecordLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	summary, err := h.usage.SummarizeByTenant(c.Request.Context(), t.ID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	records, err := h.usage.ListByTenant(c.Request.Context(), t.ID, limit)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	result := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		result = append(result, RecordResponse{
			ConversationID: r.ConversationID,
			Resource:       r.Resource,
			Quantity:       r.Quantity,
			Model:          r.Model,
			AgentID:        r.AgentPublicID,
			EstimatedCost:  r.EstimatedCost,
			CreatedAt:      r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "records": result})
}
