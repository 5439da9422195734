package conversationrepo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"agenthub/services/chat-api/internal/domain/conversation"
	"agenthub/services/chat-api/internal/infrastructure/database/dbschema"
	"agenthub/services/chat-api/internal/infrastructure/database/transaction"
	"agenthub/services/chat-api/internal/utils/functional"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

type ConversationGormRepository struct {
	db *transaction.Database
}

var _ conversation.Repository = (*ConversationGormRepository)(nil)
var _ conversation.TurnStore = (*ConversationGormRepository)(nil)

func NewConversationGormRepository(db *transaction.Database) *ConversationGormRepository {
	return &ConversationGormRepository{db}
}

// FindByPublicID implements conversation.Repository.
func (repo *ConversationGormRepository) FindByPublicID(ctx context.Context, tenantID uint, publicID string) (*conversation.Conversation, error) {
	var model dbschema.Conversation
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Where("tenant_id = ? AND public_id = ?", tenantID, publicID).
		First(&model).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to find conversation by public ID")
	}
	return model.EtoD(), nil
}

// ListByTenant implements conversation.Repository.
func (repo *ConversationGormRepository) ListByTenant(ctx context.Context, tenantID uint, userID string) ([]*conversation.Conversation, error) {
	var rows []*dbschema.Conversation
	err := repo.db.GetTx(ctx).WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list conversations")
	}
	return functional.Map(rows, func(item *dbschema.Conversation) *conversation.Conversation {
		return item.EtoD()
	}), nil
}

// ListMessages implements conversation.Repository. A positive limit returns
// the newest messages, re-sorted into creation order for replay.
func (repo *ConversationGormRepository) ListMessages(ctx context.Context, conversationID uint, limit int) ([]*conversation.Message, error) {
	tx := repo.db.GetTx(ctx).WithContext(ctx).
		Where("conversation_id = ?", conversationID)

	var rows []*dbschema.Message
	if limit > 0 {
		err := tx.Order("id DESC").Limit(limit).Find(&rows).Error
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list messages")
		}
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	} else {
		err := tx.Order("id").Find(&rows).Error
		if err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to list messages")
		}
	}
	return functional.Map(rows, func(item *dbschema.Message) *conversation.Message {
		return item.EtoD()
	}), nil
}

// DeleteOlderThan implements conversation.Repository. Messages go with their
// conversations; usage rows are append-only audit and stay.
func (repo *ConversationGormRepository) DeleteOlderThan(ctx context.Context, tenantID uint, cutoff time.Time) (int64, error) {
	var removed int64
	err := repo.db.RunInTx(ctx, func(ctx context.Context) error {
		tx := repo.db.GetTx(ctx).WithContext(ctx)

		var ids []uint
		err := tx.Model(&dbschema.Conversation{}).
			Where("tenant_id = ? AND updated_at < ?", tenantID, cutoff).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("conversation_id IN ?", ids).Delete(&dbschema.Message{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&dbschema.Conversation{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to delete expired conversations")
	}
	return removed, nil
}

// RecordTurn implements conversation.TurnStore. The lazy conversation insert,
// both message appends and the usage record run in one transaction; a failure
// anywhere rolls the whole turn back.
func (repo *ConversationGormRepository) RecordTurn(ctx context.Context, turn *conversation.Turn) (*conversation.Conversation, error) {
	var conv *conversation.Conversation
	err := repo.db.RunInTx(ctx, func(ctx context.Context) error {
		tx := repo.db.GetTx(ctx).WithContext(ctx)

		var model *dbschema.Conversation
		if turn.Conversation != nil {
			model = dbschema.NewSchemaConversation(turn.Conversation)
			if err := tx.Model(&dbschema.Conversation{}).
				Where("id = ?", model.ID).
				Update("updated_at", time.Now()).Error; err != nil {
				return err
			}
		} else {
			model = &dbschema.Conversation{
				PublicID:      turn.ConversationPublicID,
				TenantID:      turn.TenantID,
				UserID:        turn.UserID,
				AgentID:       turn.AgentID,
				AgentPublicID: turn.AgentPublicID,
				DraftID:       turn.DraftID,
				Title:         turn.Title,
			}
			create := tx
			if turn.DraftID != nil {
				create = create.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "draft_id"}},
					DoNothing: true,
				})
			}
			if err := create.Create(model).Error; err != nil {
				return err
			}
			if model.ID == 0 {
				// Lost the draft race; attach this turn to the winner.
				if err := tx.Where("tenant_id = ? AND draft_id = ?", turn.TenantID, *turn.DraftID).
					First(model).Error; err != nil {
					return err
				}
			}
		}

		messages := []*dbschema.Message{
			{
				PublicID:       turn.UserMessagePublicID,
				ConversationID: model.ID,
				Role:           string(conversation.RoleUser),
				Content:        turn.UserMessage,
			},
			{
				PublicID:       turn.AssistantMessagePublicID,
				ConversationID: model.ID,
				Role:           string(conversation.RoleAssistant),
				Content:        turn.AssistantMessage,
			},
		}
		for _, msg := range messages {
			if err := tx.Create(msg).Error; err != nil {
				return err
			}
		}

		record := turn.Usage
		record.ConversationID = model.ID
		usageModel, err := dbschema.NewSchemaUsageRecord(&record)
		if err != nil {
			return err
		}
		if err := tx.Create(usageModel).Error; err != nil {
			return err
		}

		conv = model.EtoD()
		return nil
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerRepository, err, "failed to record chat turn")
	}
	return conv, nil
}
