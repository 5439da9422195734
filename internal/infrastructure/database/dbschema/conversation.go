package dbschema

import (
	"agenthub/services/chat-api/internal/domain/conversation"
	"agenthub/services/chat-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Conversation{})
	database.RegisterSchemaForAutoMigrate(Message{})
}

// Conversation represents the database schema for conversations. The
// (tenant_id, draft_id) unique index makes lazy creation idempotent: two
// racing first messages carrying the same draft id collapse into one row.
type Conversation struct {
	BaseModel
	PublicID      string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	TenantID      uint    `gorm:"index:idx_conversation_tenant_user;uniqueIndex:idx_conversation_tenant_draft;not null"`
	Tenant        Tenant  `gorm:"foreignKey:TenantID"`
	UserID        string  `gorm:"type:varchar(100);index:idx_conversation_tenant_user;not null"`
	AgentID       *uint   `gorm:"index"`
	AgentPublicID *string `gorm:"type:varchar(50)"`
	DraftID       *string `gorm:"type:varchar(64);uniqueIndex:idx_conversation_tenant_draft"`
	Title         string  `gorm:"type:varchar(64);not null"`

	Messages []Message `gorm:"foreignKey:ConversationID"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message represents the database schema for conversation messages
type Message struct {
	BaseModel
	PublicID       string       `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID uint         `gorm:"index:idx_message_conversation_created;not null"`
	Conversation   Conversation `gorm:"foreignKey:ConversationID"`
	Role           string       `gorm:"type:varchar(20);not null"`
	Content        string       `gorm:"type:text;not null"`
}

func (Message) TableName() string {
	return "messages"
}

// NewSchemaConversation creates a database schema from a domain conversation
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID:      c.PublicID,
		TenantID:      c.TenantID,
		UserID:        c.UserID,
		AgentID:       c.AgentID,
		AgentPublicID: c.AgentPublicID,
		DraftID:       c.DraftID,
		Title:         c.Title,
	}
}

// EtoD converts database schema to domain conversation (Entity to Domain)
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:            c.ID,
		PublicID:      c.PublicID,
		TenantID:      c.TenantID,
		UserID:        c.UserID,
		AgentID:       c.AgentID,
		AgentPublicID: c.AgentPublicID,
		DraftID:       c.DraftID,
		Title:         c.Title,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// NewSchemaMessage creates a database schema from a domain message
func NewSchemaMessage(m *conversation.Message) *Message {
	return &Message{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
		},
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
	}
}

// EtoD converts database schema to domain message (Entity to Domain)
func (m *Message) EtoD() *conversation.Message {
	return &conversation.Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		Role:           conversation.Role(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
