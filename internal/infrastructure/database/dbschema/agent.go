package dbschema

import (
	"agenthub/services/chat-api/internal/domain/agent"
	"agenthub/services/chat-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Agent{})
}

// Agent represents the database schema for agents
type Agent struct {
	BaseModel
	PublicID     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	TenantID     uint   `gorm:"index:idx_agent_tenant_active;not null"`
	Tenant       Tenant `gorm:"foreignKey:TenantID"`
	Name         string `gorm:"type:varchar(255);not null"`
	Model        string `gorm:"type:varchar(100);not null"`
	SystemPrompt string `gorm:"type:text;not null"`
	Active       *bool  `gorm:"index:idx_agent_tenant_active;not null;default:true"`
}

func (Agent) TableName() string {
	return "agents"
}

// NewSchemaAgent creates a database schema from a domain agent
func NewSchemaAgent(a *agent.Agent) *Agent {
	active := a.Active
	return &Agent{
		BaseModel: BaseModel{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		},
		PublicID:     a.PublicID,
		TenantID:     a.TenantID,
		Name:         a.Name,
		Model:        a.Model,
		SystemPrompt: a.SystemPrompt,
		Active:       &active,
	}
}

// EtoD converts database schema to domain agent (Entity to Domain)
func (a *Agent) EtoD() *agent.Agent {
	active := false
	if a.Active != nil {
		active = *a.Active
	}
	return &agent.Agent{
		ID:           a.ID,
		PublicID:     a.PublicID,
		TenantID:     a.TenantID,
		Name:         a.Name,
		Model:        a.Model,
		SystemPrompt: a.SystemPrompt,
		Active:       active,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
