package chatrequests

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	// ConversationID continues an existing thread; omitted on first message.
	ConversationID *string `json:"conversation_id,omitempty"`
	// AgentID selects the persona whose model and system prompt apply.
	AgentID *string `json:"agent_id,omitempty"`
	// DraftID is a client-chosen token making lazy conversation creation
	// idempotent under concurrent first messages.
	DraftID *string `json:"draft_id,omitempty"`
}
