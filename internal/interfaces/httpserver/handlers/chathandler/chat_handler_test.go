package chathandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"agenthub/services/chat-api/internal/config"
	"agenthub/services/chat-api/internal/domain"
	"agenthub/services/chat-api/internal/domain/agent"
	"agenthub/services/chat-api/internal/domain/conversation"
	"agenthub/services/chat-api/internal/domain/tenant"
	"agenthub/services/chat-api/internal/infrastructure/inference"
	"agenthub/services/chat-api/internal/infrastructure/vault"
	"agenthub/services/chat-api/internal/utils/httpclients"
)

type fakeTenantRepo struct {
	stored *tenant.Tenant
}

func (f *fakeTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error { return nil }

func (f *fakeTenantRepo) FindByPublicID(ctx context.Context, publicID string) (*tenant.Tenant, error) {
	if f.stored != nil && f.stored.PublicID == publicID {
		return f.stored, nil
	}
	return nil, errors.New("tenant not found")
}

func (f *fakeTenantRepo) List(ctx context.Context) ([]*tenant.Tenant, error) { return nil, nil }

func (f *fakeTenantRepo) UpdatePlan(ctx context.Context, id uint, plan tenant.Plan, limits tenant.PlanLimits) error {
	return nil
}

func (f *fakeTenantRepo) UpdateCredential(ctx context.Context, id uint, provider tenant.CredentialProvider, encryptedBlob string) error {
	return nil
}

type fakeAgentRepo struct{}

func (fakeAgentRepo) Create(ctx context.Context, a *agent.Agent) error { return nil }

func (fakeAgentRepo) ListByTenant(ctx context.Context, tenantID uint) ([]*agent.Agent, error) {
	return nil, nil
}

func (fakeAgentRepo) FindByPublicID(ctx context.Context, tenantID uint, publicID string) (*agent.Agent, error) {
	return nil, errors.New("agent not found")
}

func (fakeAgentRepo) CountActiveByTenant(ctx context.Context, tenantID uint) (int64, error) {
	return 0, nil
}

func (fakeAgentRepo) Delete(ctx context.Context, tenantID uint, publicID string) error { return nil }

type fakeConversationRepo struct{}

func (fakeConversationRepo) FindByPublicID(ctx context.Context, tenantID uint, publicID string) (*conversation.Conversation, error) {
	return nil, errors.New("conversation not found")
}

func (fakeConversationRepo) ListByTenant(ctx context.Context, tenantID uint, userID string) ([]*conversation.Conversation, error) {
	return nil, nil
}

func (fakeConversationRepo) ListMessages(ctx context.Context, conversationID uint, limit int) ([]*conversation.Message, error) {
	return nil, nil
}

func (fakeConversationRepo) DeleteOlderThan(ctx context.Context, tenantID uint, cutoff time.Time) (int64, error) {
	return 0, nil
}

// recordingTurnStore counts persistence attempts so tests can assert whether
// a turn was recorded at all, and in which order relative to the response.
type recordingTurnStore struct {
	calls    int
	turns    []*conversation.Turn
	onRecord func()
}

func (s *recordingTurnStore) RecordTurn(ctx context.Context, turn *conversation.Turn) (*conversation.Conversation, error) {
	s.calls++
	s.turns = append(s.turns, turn)
	if s.onRecord != nil {
		s.onRecord()
	}
	return &conversation.Conversation{
		ID:       1,
		PublicID: turn.ConversationPublicID,
		TenantID: turn.TenantID,
		Title:    turn.Title,
	}, nil
}

type chatTestEnv struct {
	engine *gin.Engine
	store  *recordingTurnStore
}

// newChatTestEnv wires the real services over fakes. An empty apiKey leaves
// the tenant without a stored credential.
func newChatTestEnv(t *testing.T, upstreamURL, apiKey string) *chatTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := vault.New("handler-test-secret-0123456789ab")
	if err != nil {
		t.Fatalf("vault init: %v", err)
	}

	tn := &tenant.Tenant{
		ID:            1,
		PublicID:      "tenant_abc",
		Name:          "Acme",
		Plan:          tenant.PlanFree,
		MaxAgents:     1,
		RetentionDays: 30,
	}
	if apiKey != "" {
		blob, err := v.Encrypt(apiKey)
		if err != nil {
			t.Fatalf("encrypt key: %v", err)
		}
		tn.EncryptedOpenAIKey = &blob
	}

	store := &recordingTurnStore{}
	handler := NewChatHandler(
		tenant.NewService(&fakeTenantRepo{stored: tn}, v),
		agent.NewService(fakeAgentRepo{}),
		conversation.NewService(fakeConversationRepo{}, store),
		inference.NewRegistry(
			inference.NewOpenAIProvider(httpclients.NewClient("openai-test"), upstreamURL),
		),
		&config.Config{
			UpstreamTimeout: 5 * time.Second,
			MockLatency:     time.Millisecond,
		},
	)

	engine := gin.New()
	engine.POST("/v1/chat", func(c *gin.Context) {
		c.Set("principal", &domain.Principal{
			UserID:         "user_1",
			TenantPublicID: "tenant_abc",
			Email:          "dev@example.com",
		})
		handler.Chat(c)
	})
	return &chatTestEnv{engine: engine, store: store}
}

func (env *chatTestEnv) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	return rec
}

func TestChatStreamsAndPersistsTranscript(t *testing.T) {
	transcript := strings.Join([]string{
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		`data: [DONE]`,
		``,
	}, "\n\n")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, transcript)
	}))
	defer server.Close()

	env := newChatTestEnv(t, server.URL, "sk-live-valid")
	rec := env.post(`{"message":"hi there"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Fatalf("content type = %q", got)
	}
	if rec.Body.String() != "Hello" {
		t.Fatalf("streamed body = %q", rec.Body.String())
	}
	if env.store.calls != 1 {
		t.Fatalf("expected one persisted turn, got %d", env.store.calls)
	}
	turn := env.store.turns[0]
	if turn.UserMessage != "hi there" || turn.AssistantMessage != "Hello" {
		t.Fatalf("persisted turn = %q / %q", turn.UserMessage, turn.AssistantMessage)
	}
	if turn.Usage.Resource != "openai" {
		t.Fatalf("usage resource = %q", turn.Usage.Resource)
	}
}

func TestChatAbortedStreamPersistsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		w.(http.Flusher).Flush()
		// Drop the connection mid-stream, after one fragment reached the client.
		panic(http.ErrAbortHandler)
	}))
	defer server.Close()

	env := newChatTestEnv(t, server.URL, "sk-live-valid")
	rec := env.post(`{"message":"hi there"}`)

	if rec.Body.String() != "Hel" {
		t.Fatalf("expected the partial fragment on the wire, got %q", rec.Body.String())
	}
	if env.store.calls != 0 {
		t.Fatalf("expected no persistence after an aborted stream, got %d calls", env.store.calls)
	}
}

func TestChatUpstreamErrorBeforeStreamPersistsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"invalid api key"}}`)
	}))
	defer server.Close()

	env := newChatTestEnv(t, server.URL, "sk-live-valid")
	rec := env.post(`{"message":"hi there"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	if env.store.calls != 0 {
		t.Fatalf("expected no persistence on upstream error, got %d calls", env.store.calls)
	}
}

func TestChatPlaceholderKeyServesMockTurn(t *testing.T) {
	env := newChatTestEnv(t, "http://upstream.invalid", "sk-teste-playground")

	bodyLenAtPersist := -1
	rec := httptest.NewRecorder()
	env.store.onRecord = func() { bodyLenAtPersist = rec.Body.Len() }

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message":"hello mock"}`))
	req.Header.Set("Content-Type", "application/json")
	env.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Tokens  int    `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Message != mockResponseMessage {
		t.Fatalf("message = %q", resp.Message)
	}
	if resp.Tokens != mockTokenCount {
		t.Fatalf("tokens = %d, want %d", resp.Tokens, mockTokenCount)
	}

	if env.store.calls != 1 {
		t.Fatalf("expected one persisted turn, got %d", env.store.calls)
	}
	if bodyLenAtPersist != 0 {
		t.Fatalf("turn must persist before the response is written, body had %d bytes", bodyLenAtPersist)
	}
	turn := env.store.turns[0]
	if turn.AssistantMessage != mockResponseMessage {
		t.Fatalf("persisted assistant message = %q", turn.AssistantMessage)
	}
	if turn.Usage.Quantity != mockTokenCount {
		t.Fatalf("recorded tokens = %d, want the fixed count %d", turn.Usage.Quantity, mockTokenCount)
	}
}

func TestChatMissingCredentialRejected(t *testing.T) {
	env := newChatTestEnv(t, "http://upstream.invalid", "")
	rec := env.post(`{"message":"hi there"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if env.store.calls != 0 {
		t.Fatalf("expected no persistence without a credential, got %d calls", env.store.calls)
	}
}

func TestChatEmptyMessageRejected(t *testing.T) {
	env := newChatTestEnv(t, "http://upstream.invalid", "sk-live-valid")
	rec := env.post(`{"message":"   "}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if env.store.calls != 0 {
		t.Fatalf("expected no persistence, got %d calls", env.store.calls)
	}
}
