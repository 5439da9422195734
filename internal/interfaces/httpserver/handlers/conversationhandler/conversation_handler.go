package conversationhandler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agenthub/services/chat-api/internal/domain/conversation"
	"agenthub/services/chat-api/internal/domain/tenant"
	middleware "agenthub/services/chat-api/internal/interfaces/httpserver/middlewares"
	"agenthub/services/chat-api/internal/interfaces/httpserver/responses"
)

// ConversationHandler serves conversation reads.
type ConversationHandler struct {
	tenants       *tenant.Service
	conversations *conversation.Service
}

func NewConversationHandler(tenants *tenant.Service, conversations *conversation.Service) *ConversationHandler {
	return &ConversationHandler{tenants: tenants, conversations: conversations}
}

// ConversationResponse is the public representation of a conversation.
type ConversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	AgentID   *string   `json:"agent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageResponse is the public representation of one message.
type MessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ConversationHandler) resolveTenant(c *gin.Context) (*tenant.Tenant, bool) {
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

// List handles GET /v1/conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	t, ok := h.resolveTenant(c)
	if !ok {
		return
	}
	principal := middleware.GetPrincipal(c)

	convs, err := h.conversations.List(c.Request.Context(), t.ID, principal.UserID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	result := make([]ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		result = append(result, ConversationResponse{
			ID:        conv.PublicID,
			Title:     conv.Title,
			AgentID:   conv.AgentPublicID,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": result})
}

// Messages handles GET /v1/conversations/:id/messages.
func (h *ConversationHandler) Messages(c *gin.Context) {
	t, ok := h.resolveTenant(c)
	if !ok {
		return
	}

	conv, err := h.conversations.Find(c.Request.Context(), t.ID, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	messages, err := h.conversations.Messages(c.Request.Context(), conv)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	result := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		result = append(result, MessageResponse{
			ID:        msg.PublicID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"conversation_id": conv.PublicID, "messages": result})
}
