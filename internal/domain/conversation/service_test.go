package conversation

import (
	"context"
	"strings"
	"testing"
	"time"
)

type fakeTurnStore struct {
	turns []*Turn
	fail  error
}

func (f *fakeTurnStore) RecordTurn(ctx context.Context, turn *Turn) (*Conversation, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.turns = append(f.turns, turn)
	conv := turn.Conversation
	if conv == nil {
		conv = &Conversation{
			ID:       42,
			PublicID: turn.ConversationPublicID,
			TenantID: turn.TenantID,
			UserID:   turn.UserID,
			Title:    turn.Title,
		}
	}
	return conv, nil
}

type fakeConvRepo struct {
	messages []*Message
}

func (f *fakeConvRepo) FindByPublicID(ctx context.Context, tenantID uint, publicID string) (*Conversation, error) {
	return &Conversation{ID: 1, PublicID: publicID, TenantID: tenantID}, nil
}

func (f *fakeConvRepo) ListByTenant(ctx context.Context, tenantID uint, userID string) ([]*Conversation, error) {
	return nil, nil
}

func (f *fakeConvRepo) ListMessages(ctx context.Context, conversationID uint, limit int) ([]*Message, error) {
	if limit > 0 && len(f.messages) > limit {
		return f.messages[len(f.messages)-limit:], nil
	}
	return f.messages, nil
}

func (f *fakeConvRepo) DeleteOlderThan(ctx context.Context, tenantID uint, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestRecordTurnLazyCreation(t *testing.T) {
	store := &fakeTurnStore{}
	svc := NewService(&fakeConvRepo{}, store)

	message := strings.Repeat("m", 80)
	conv, err := svc.RecordTurn(context.Background(), RecordTurnInput{
		TenantID:         7,
		UserID:           "user-1",
		UserMessage:      message,
		AssistantMessage: "reply",
		Provider:         "openai",
		Model:            "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.turns) != 1 {
		t.Fatalf("expected 1 recorded turn, got %d", len(store.turns))
	}
	turn := store.turns[0]

	wantTitle := strings.Repeat("m", 50) + "..."
	if turn.Title != wantTitle {
		t.Fatalf("expected derived title %q, got %q", wantTitle, turn.Title)
	}
	if !strings.HasPrefix(turn.ConversationPublicID, "conv_") {
		t.Fatalf("expected generated conversation id, got %q", turn.ConversationPublicID)
	}
	if conv.PublicID != turn.ConversationPublicID {
		t.Fatalf("returned conversation id %q differs from turn id %q", conv.PublicID, turn.ConversationPublicID)
	}
	if turn.UserMessagePublicID == turn.AssistantMessagePublicID {
		t.Fatal("user and assistant messages must have distinct ids")
	}
}

func TestRecordTurnShortTitleKeptVerbatim(t *testing.T) {
	store := &fakeTurnStore{}
	svc := NewService(&fakeConvRepo{}, store)

	if _, err := svc.RecordTurn(context.Background(), RecordTurnInput{
		TenantID:         7,
		UserID:           "user-1",
		UserMessage:      "Oi, tudo bem?",
		AssistantMessage: "Tudo!",
		Provider:         "openai",
		Model:            "gpt-4o-mini",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.turns[0].Title; got != "Oi, tudo bem?" {
		t.Fatalf("short message should be the title verbatim, got %q", got)
	}
}

func TestRecordTurnExistingConversation(t *testing.T) {
	store := &fakeTurnStore{}
	svc := NewService(&fakeConvRepo{}, store)

	existing := &Conversation{ID: 9, PublicID: "conv_existing", TenantID: 7}
	conv, err := svc.RecordTurn(context.Background(), RecordTurnInput{
		TenantID:         7,
		UserID:           "user-1",
		Conversation:     existing,
		UserMessage:      "follow-up",
		AssistantMessage: "sure",
		Provider:         "openai",
		Model:            "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv != existing {
		t.Fatal("existing conversation must be reused")
	}
	if store.turns[0].Title != "" {
		t.Fatalf("no title should be derived for existing conversations, got %q", store.turns[0].Title)
	}
}

func TestRecordTurnUsageEstimate(t *testing.T) {
	store := &fakeTurnStore{}
	svc := NewService(&fakeConvRepo{}, store)

	user := strings.Repeat("u", 40)
	assistant := strings.Repeat("a", 81)
	if _, err := svc.RecordTurn(context.Background(), RecordTurnInput{
		TenantID:         7,
		UserID:           "user-1",
		UserMessage:      user,
		AssistantMessage: assistant,
		Provider:         "anthropic",
		Model:            "claude-3-5-sonnet-20240620",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := store.turns[0].Usage
	if rec.Quantity != 31 {
		t.Fatalf("expected 31 estimated tokens, got %d", rec.Quantity)
	}
	if rec.Resource != "anthropic" {
		t.Fatalf("expected resource anthropic, got %q", rec.Resource)
	}
	if rec.Model != "claude-3-5-sonnet-20240620" {
		t.Fatalf("unexpected model %q", rec.Model)
	}
}

func TestRecordTurnRejectsEmptyMessage(t *testing.T) {
	store := &fakeTurnStore{}
	svc := NewService(&fakeConvRepo{}, store)

	if _, err := svc.RecordTurn(context.Background(), RecordTurnInput{
		TenantID:         7,
		UserID:           "user-1",
		UserMessage:      "   ",
		AssistantMessage: "reply",
	}); err == nil {
		t.Fatal("expected error for empty user message")
	}
	if len(store.turns) != 0 {
		t.Fatal("nothing should be persisted for invalid input")
	}
}

func TestHistoryCapsAtLimit(t *testing.T) {
	repo := &fakeConvRepo{}
	for i := 0; i < 30; i++ {
		repo.messages = append(repo.messages, &Message{ID: uint(i + 1), Role: RoleUser, Content: "m"})
	}
	svc := NewService(repo, &fakeTurnStore{})

	history, err := svc.History(context.Background(), &Conversation{ID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != HistoryLimit {
		t.Fatalf("expected %d messages, got %d", HistoryLimit, len(history))
	}
	// Most recent messages survive the cap.
	if history[len(history)-1].ID != 30 {
		t.Fatalf("expected newest message last, got id %d", history[len(history)-1].ID)
	}
}
