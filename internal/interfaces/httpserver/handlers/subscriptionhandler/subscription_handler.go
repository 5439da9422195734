package subscriptionhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agenthub/services/chat-api/internal/domain/tenant"
	middleware "agenthub/services/chat-api/internal/interfaces/httpserver/middlewares"
	"agenthub/services/chat-api/internal/interfaces/httpserver/responses"
)

// SubscriptionHandler moves tenants between plans.
type SubscriptionHandler struct {
	tenants *tenant.Service
}

func NewSubscriptionHandler(tenants *tenant.Service) *SubscriptionHandler {
	return &SubscriptionHandler{tenants: tenants}
}

// Upgrade handles POST /v1/subscription/upgrade.
func (h *SubscriptionHandler) Upgrade(c *gin.Context) {
	h.changePlan(c, tenant.PlanPro)
}

// Downgrade handles POST /v1/subscription/downgrade.
func (h *SubscriptionHandler) Downgrade(c *gin.Context) {
	h.changePlan(c, tenant.PlanFree)
}

func (h *SubscriptionHandler) changePlan(c *gin.Context, plan tenant.Plan) {
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

	if err := h.tenants.ChangePlan(c.Request.Context(), t, plan); err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":           string(t.Plan),
		"max_agents":     t.MaxAgents,
		"retention_days": t.RetentionDays,
	})
}
