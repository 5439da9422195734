package chathandler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"

	"agenthub/services/chat-api/internal/config"
	"agenthub/services/chat-api/internal/domain/agent"
	"agenthub/services/chat-api/internal/domain/conversation"
	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/domain/usage"
	"agenthub/services/chat-api/internal/infrastructure/inference"
	"agenthub/services/chat-api/internal/infrastructure/logger"
	"agenthub/services/chat-api/internal/infrastructure/metrics"
	middleware "agenthub/services/chat-api/internal/interfaces/httpserver/middlewares"
	chatrequests "agenthub/services/chat-api/internal/interfaces/httpserver/requests/chat"
	"agenthub/services/chat-api/internal/interfaces/httpserver/responses"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

const (
	mockResponseMessage = "This is a simulated AI response. Configure a real API key in settings to reach your provider."
	mockTokenCount      = 100
	persistTimeout      = 15 * time.Second
)

// ChatHandler serves the streaming chat endpoint.
type ChatHandler struct {
	tenants       *tenant.Service
	agents        *agent.Service
	conversations *conversation.Service
	registry      *inference.Registry
	cfg           *config.Config
}

func NewChatHandler(
	tenants *tenant.Service,
	agents *agent.Service,
	conversations *conversation.Service,
	registry *inference.Registry,
	cfg *config.Config,
) *ChatHandler {
	return &ChatHandler{
		tenants:       tenants,
		agents:        agents,
		conversations: conversations,
		registry:      registry,
		cfg:           cfg,
	}
}

// Chat handles POST /v1/chat. The response streams raw text fragments as the
// provider produces them; the completed turn is persisted only after a clean
// upstream end.
func (h *ChatHandler) Chat(c *gin.Context) {
	ctx := c.Request.Context()

	principal := middleware.GetPrincipal(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, responses.ErrorResponse{Error: "unauthorized"})
		return
	}

	t, err := h.tenants.Resolve(ctx, principal.TenantPublicID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	var req chatrequests.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: "message is required"})
		return
	}

	var conv *conversation.Conversation
	if req.ConversationID != nil && *req.ConversationID != "" {
		conv, err = h.conversations.Find(ctx, t.ID, *req.ConversationID)
		if err != nil {
			responses.HandleError(c, err)
			return
		}
	}

	var ag *agent.Agent
	model := agent.DefaultModel
	if req.AgentID != nil && *req.AgentID != "" {
		ag, err = h.agents.Find(ctx, t, *req.AgentID)
		if err != nil {
			responses.HandleError(c, err)
			return
		}
		model = ag.Model
	}

	kind := inference.KindForModel(model)
	apiKey, err := h.tenants.DecryptCredential(ctx, t, tenant.CredentialProvider(kind))
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	if kind == inference.KindOpenAI && isPlaceholderKey(apiKey) {
		h.serveMock(c, t, principal.UserID, conv, ag, model, kind, req)
		return
	}

	provider, ok := h.registry.ForModel(model)
	if !ok {
		responses.HandleError(c, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeExternal, "no provider configured for model", nil))
		return
	}

	messages, err := h.buildMessages(ctx, conv, ag, req.Message)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	streamCtx, cancel := context.WithTimeout(ctx, h.cfg.UpstreamTimeout)
	defer cancel()

	stream, err := provider.StreamChat(streamCtx, inference.ChatRequest{
		Model:    model,
		Messages: messages,
		APIKey:   apiKey,
	})
	if err != nil {
		metrics.RecordProviderError(string(kind), string(platformerrors.ErrorTypeExternal))
		responses.HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Transfer-Encoding", "chunked")
	c.Writer.WriteHeaderNow()

	metrics.IncrementActiveStreams(model)
	defer metrics.DecrementActiveStreams(model)

	transcript, err := relayStream(stream, c.Writer, func() {
		c.Writer.Flush()
		metrics.StreamFragmentsTotal.WithLabelValues(model, string(kind)).Inc()
	})
	if err != nil {
		// Truncated response already on the wire. Nothing is persisted.
		log := logger.GetLogger()
		log.Warn().Err(err).
			Str("request_id", middleware.RequestIDFromContext(c)).
			Str("model", model).
			Msg("stream aborted before completion")
		metrics.RecordRelayFailure(string(kind), relayFailureReason(streamCtx, err))
		return
	}

	h.persistTurn(conversation.RecordTurnInput{
		TenantID:         t.ID,
		UserID:           principal.UserID,
		Conversation:     conv,
		DraftID:          req.DraftID,
		AgentID:          agentIDRef(ag),
		AgentPublicID:    agentPublicIDRef(ag),
		UserMessage:      req.Message,
		AssistantMessage: transcript,
		Provider:         string(kind),
		Model:            model,
	})
}

func (h *ChatHandler) serveMock(c *gin.Context, t *tenant.Tenant, userID string, conv *conversation.Conversation, ag *agent.Agent, model string, kind inference.ProviderKind, req chatrequests.ChatRequest) {
	select {
	case <-time.After(h.cfg.MockLatency):
	case <-c.Request.Context().Done():
		return
	}

	h.persistTurn(conversation.RecordTurnInput{
		TenantID:         t.ID,
		UserID:           userID,
		Conversation:     conv,
		DraftID:          req.DraftID,
		AgentID:          agentIDRef(ag),
		AgentPublicID:    agentPublicIDRef(ag),
		UserMessage:      req.Message,
		AssistantMessage: mockResponseMessage,
		Provider:         string(kind),
		Model:            model,
		Tokens:           mockTokenCount,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": mockResponseMessage,
		"tokens":  mockTokenCount,
	})
}

// buildMessages assembles the upstream message list: agent system prompt
// first, then up to the 20 most recent messages of the conversation in
// creation order, then the new user message.
func (h *ChatHandler) buildMessages(ctx context.Context, conv *conversation.Conversation, ag *agent.Agent, userMessage string) ([]openai.ChatCompletionMessage, error) {
	var messages []openai.ChatCompletionMessage

	if ag != nil && ag.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: ag.SystemPrompt,
		})
	}

	if conv != nil {
		history, err := h.conversations.History(ctx, conv)
		if err != nil {
			return nil, err
		}
		for _, msg := range history {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    string(msg.Role),
				Content: msg.Content,
			})
		}
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})
	return messages, nil
}

// persistTurn records the completed exchange. Persistence failures are logged
// and swallowed: the response already streamed and must not be disturbed.
func (h *ChatHandler) persistTurn(input conversation.RecordTurnInput) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	created := input.Conversation == nil
	if _, err := h.conversations.RecordTurn(ctx, input); err != nil {
		log := logger.GetLogger()
		log.Error().Err(err).Msg("failed to persist chat turn")
		return
	}

	if created {
		metrics.ConversationsCreatedTotal.Inc()
	}
	tokens := input.Tokens
	if tokens <= 0 {
		tokens = usage.EstimateTokens(input.UserMessage, input.AssistantMessage)
	}
	metrics.RecordEstimatedTokens(input.Model, input.Provider, tokens)
}

// isPlaceholderKey reports whether a stored OpenAI key is a test placeholder
// that should be answered by the simulated response path.
func isPlaceholderKey(apiKey string) bool {
	return strings.HasPrefix(apiKey, "sk-teste") || !strings.HasPrefix(apiKey, "sk-")
}

func relayFailureReason(ctx context.Context, err error) string {
	switch {
	case ctx.Err() != nil:
		return "timeout"
	case err != nil:
		return "upstream"
	default:
		return "unknown"
	}
}

func agentIDRef(ag *agent.Agent) *uint {
	if ag == nil {
		return nil
	}
	return &ag.ID
}

func agentPublicIDRef(ag *agent.Agent) *string {
	if ag == nil {
		return nil
	}
	return &ag.PublicID
}
