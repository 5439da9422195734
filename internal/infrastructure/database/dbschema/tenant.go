package dbschema

import (
	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Tenant{})
}

// Tenant represents the database schema for tenants. Provider keys are stored
// as vault blobs, never plaintext.
type Tenant struct {
	BaseModel
	PublicID      string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name          string `gorm:"type:varchar(255);not null"`
	Plan          string `gorm:"type:varchar(20);not null;default:'free'"`
	MaxAgents     int    `gorm:"not null;default:1"`
	RetentionDays int    `gorm:"not null;default:30"`

	EncryptedOpenAIKey    *string `gorm:"column:encrypted_openai_key;type:text"`
	EncryptedAnthropicKey *string `gorm:"column:encrypted_anthropic_key;type:text"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// NewSchemaTenant creates a database schema from a domain tenant
func NewSchemaTenant(t *tenant.Tenant) *Tenant {
	return &Tenant{
		BaseModel: BaseModel{
			ID:        t.ID,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		},
		PublicID:              t.PublicID,
		Name:                  t.Name,
		Plan:                  string(t.Plan),
		MaxAgents:             t.MaxAgents,
		RetentionDays:         t.RetentionDays,
		EncryptedOpenAIKey:    t.EncryptedOpenAIKey,
		EncryptedAnthropicKey: t.EncryptedAnthropicKey,
	}
}

// EtoD converts database schema to domain tenant (Entity to Domain)
func (t *Tenant) EtoD() *tenant.Tenant {
	return &tenant.Tenant{
		ID:                    t.ID,
		PublicID:              t.PublicID,
		Name:                  t.Name,
		Plan:                  tenant.Plan(t.Plan),
		MaxAgents:             t.MaxAgents,
		RetentionDays:         t.RetentionDays,
		EncryptedOpenAIKey:    t.EncryptedOpenAIKey,
		EncryptedAnthropicKey: t.EncryptedAnthropicKey,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}
}
