package conversation

import (
	"context"
	"time"

	"agenthub/services/chat-api/internal/domain/usage"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// HistoryLimit caps how many prior messages are replayed to the upstream
// provider on each turn.
const HistoryLimit = 20

// Conversation is a chat thread owned by a tenant and a user, optionally
// bound to an agent. It is created lazily on the first message and only ever
// grows by message appends.
type Conversation struct {
	ID            uint
	PublicID      string
	TenantID      uint
	UserID        string
	AgentID       *uint
	AgentPublicID *string
	DraftID       *string
	Title         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is one immutable entry in a conversation, ordered by creation time.
type Message struct {
	ID             uint
	PublicID       string
	ConversationID uint
	Role           Role
	Content        string
	CreatedAt      time.Time
}

// Turn is one complete user/assistant exchange ready to be persisted.
// Conversation is nil when the turn starts a new chat; in that case the store
// creates one with the prepared Title and DraftID.
type Turn struct {
	TenantID      uint
	UserID        string
	Conversation  *Conversation
	DraftID       *string
	Title         string
	AgentID       *uint
	AgentPublicID *string

	UserMessagePublicID      string
	AssistantMessagePublicID string
	ConversationPublicID     string

	UserMessage      string
	AssistantMessage string

	Usage usage.Record
}

// TurnStore persists a full turn atomically: lazy conversation creation, the
// two message appends, and the usage record, in one transaction.
type TurnStore interface {
	RecordTurn(ctx context.Context, turn *Turn) (*Conversation, error)
}

// Repository defines the read/maintenance side of conversation storage.
type Repository interface {
	FindByPublicID(ctx context.Context, tenantID uint, publicID string) (*Conversation, error)
	ListByTenant(ctx context.Context, tenantID uint, userID string) ([]*Conversation, error)
	ListMessages(ctx context.Context, conversationID uint, limit int) ([]*Message, error)
	DeleteOlderThan(ctx context.Context, tenantID uint, cutoff time.Time) (int64, error)
}
