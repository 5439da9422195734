package agenthandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agenthub/services/chat-api/internal/domain/agent"
	"agenthub/services/chat-api/internal/domain/tenant"
	middleware "agenthub/services/chat-api/internal/interfaces/httpserver/middlewares"
	"agenthub/services/chat-api/internal/interfaces/httpserver/responses"
)

// AgentHandler handles agent CRUD requests
type AgentHandler struct {
	tenants *tenant.Service
	agents  *agent.Service
}

func NewAgentHandler(tenants *tenant.Service, agents *agent.Service) *AgentHandler {
	return &AgentHandler{tenants: tenants, agents: agents}
}

// CreateAgentRequest is the body of POST /v1/agents.
type CreateAgentRequest struct {
	Name         string `json:"name" binding:"required"`
	SystemPrompt string `json:"system_prompt" binding:"required"`
	Model        string `json:"model,omitempty"`
}

// AgentResponse is the public representation of an agent.
type AgentResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Model        string    `json:"model"`
	SystemPrompt string    `json:"system_prompt"`
	CreatedAt    time.Time `json:"created_at"`
}

func newAgentResponse(a *agent.Agent) AgentResponse {
	return AgentResponse{
		ID:           a.PublicID,
		Name:         a.Name,
		Model:        a.Model,
		SystemPrompt: a.SystemPrompt,
		CreatedAt:    a.CreatedAt,
	}
}

func (h *AgentHandler) resolveTenant(c *gin.Context) (*tenant.Tenant, bool) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, responses.ErrorResponse{Error: "unauthorized"})
		return nil, false
	}
	t, err := h.tenants.Resolve(c.Request.Context(), principal.TenantPublicID)
	if err != nil {
		responses.HandleError(c, err)
		return nil, false
	}
	return t, true
}

// List handles GET /v1/agents.
func (h *AgentHandler) List(c *gin.Context) {
	t, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	agents, err := h.agents.List(c.Request.Context(), t)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	result := make([]AgentResponse, 0, len(agents))
	for _, a := range agents {
		result = append(result, newAgentResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"agents": result, "limit": t.MaxAgents})
}

// Create handles POST /v1/agents. Creation is rejected once the tenant's plan
// limit is reached.
func (h *AgentHandler) Create(c *gin.Context) {
	t, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "name and system prompt are required"})
		return
	}

	a, err := h.agents.Create(c.Request.Context(), t, agent.CreateInput{
		Name:         req.Name,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
	})
	if err != nil {
		responses.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAgentResponse(a))
}

// Delete handles DELETE /v1/agents/:id.
func (h *AgentHandler) Delete(c *gin.Context) {
	t, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	if err := h.agents.Delete(c.Request.Context(), t, c.Param("id")); err != nil {
		responses.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
