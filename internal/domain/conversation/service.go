package conversation

import (
	"context"
	"strings"

	"agenthub/services/chat-api/internal/domain/usage"
	"agenthub/services/chat-api/internal/utils/idgen"
	"agenthub/services/chat-api/internal/utils/platformerrors"
	"agenthub/services/chat-api/internal/utils/stringutils"
)

// RecordTurnInput carries everything the service needs to persist one
// completed exchange.
type RecordTurnInput struct {
	TenantID uint
	UserID   string

	// Conversation is the existing thread, or nil to create one lazily.
	Conversation *Conversation
	// DraftID makes lazy creation idempotent: two concurrent first messages
	// carrying the same draft id land in a single conversation.
	DraftID *string

	AgentID       *uint
	AgentPublicID *string

	UserMessage      string
	AssistantMessage string

	Provider string
	Model    string

	// Tokens overrides the character-based estimate when positive. The mock
	// response path records a fixed count instead of an estimate.
	Tokens int
}

// Service owns conversation reads and after-stream persistence.
type Service struct {
	repo  Repository
	store TurnStore
}

func NewService(repo Repository, store TurnStore) *Service {
	return &Service{repo: repo, store: store}
}

// Find loads one of the tenant's conversations by public id.
func (s *Service) Find(ctx context.Context, tenantID uint, publicID string) (*Conversation, error) {
	conv, err := s.repo.FindByPublicID(ctx, tenantID, publicID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", err)
	}
	return conv, nil
}

// List returns the user's conversations within the tenant.
func (s *Service) List(ctx context.Context, tenantID uint, userID string) ([]*Conversation, error) {
	convs, err := s.repo.ListByTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	return convs, nil
}

// History returns the most recent messages of a conversation in creation
// order, capped at HistoryLimit for replay to the provider.
func (s *Service) History(ctx context.Context, conv *Conversation) ([]*Message, error) {
	messages, err := s.repo.ListMessages(ctx, conv.ID, HistoryLimit)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load history")
	}
	return messages, nil
}

// Messages returns the full message list of a conversation.
func (s *Service) Messages(ctx context.Context, conv *Conversation) ([]*Message, error) {
	messages, err := s.repo.ListMessages(ctx, conv.ID, 0)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load messages")
	}
	return messages, nil
}

// RecordTurn materializes one exchange: lazily creates the conversation
// (title derived from the user message), appends the user and assistant
// messages in that order, and writes one usage record. All writes run in one
// transaction; the caller decides whether a failure is fatal.
func (s *Service) RecordTurn(ctx context.Context, input RecordTurnInput) (*Conversation, error) {
	if strings.TrimSpace(input.UserMessage) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "user message cannot be empty", nil)
	}

	turn := &Turn{
		TenantID:      input.TenantID,
		UserID:        input.UserID,
		Conversation:  input.Conversation,
		DraftID:       input.DraftID,
		AgentID:       input.AgentID,
		AgentPublicID: input.AgentPublicID,

		UserMessage:      input.UserMessage,
		AssistantMessage: input.AssistantMessage,
	}

	if input.Conversation == nil {
		publicID, err := idgen.GenerateSecureID("conv", 16)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate conversation id", err)
		}
		turn.ConversationPublicID = publicID
		turn.Title = stringutils.DeriveTitle(input.UserMessage, stringutils.DefaultTitleLength)
	} else {
		turn.ConversationPublicID = input.Conversation.PublicID
	}

	userMsgID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate message id", err)
	}
	assistantMsgID, err := idgen.GenerateSecureID("msg", 16)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate message id", err)
	}
	turn.UserMessagePublicID = userMsgID
	turn.AssistantMessagePublicID = assistantMsgID

	tokens := input.Tokens
	if tokens <= 0 {
		tokens = usage.EstimateTokens(input.UserMessage, input.AssistantMessage)
	}
	turn.Usage = usage.Record{
		TenantID:      input.TenantID,
		Resource:      input.Provider,
		Quantity:      tokens,
		Model:         input.Model,
		AgentPublicID: input.AgentPublicID,
		EstimatedCost: usage.EstimateCost(input.Model, tokens),
	}

	conv, err := s.store.RecordTurn(ctx, turn)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist chat turn")
	}
	return conv, nil
}
