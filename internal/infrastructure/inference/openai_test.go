package inference

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agenthub/services/chat-api/internal/utils/httpclients"
	"agenthub/services/chat-api/internal/utils/platformerrors"
)

func collectFragments(t *testing.T, stream *ChunkStream) []string {
	t.Helper()
	defer stream.Close()

	var fragments []string
	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			return fragments
		}
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		fragments = append(fragments, fragment)
	}
}

func TestOpenAIStreamDecoding(t *testing.T) {
	transcript := strings.Join([]string{
		`data: {"choices":[{"delta":{"role":"assistant"}}]}`,
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		`data: {"choices":[{"delta":{"content":"lo, "}}]}`,
		`data: {"choices":[{"delta":{"content":"world"}}]}`,
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
		``,
	}, "\n\n")

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, transcript)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(httpclients.NewClient("openai-test"), server.URL)
	stream, err := provider.StreamChat(context.Background(), ChatRequest{
		Model:  "gpt-4o-mini",
		APIKey: "sk-live-key",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fragments := collectFragments(t, stream)
	if got := strings.Join(fragments, ""); got != "Hello, world" {
		t.Fatalf("expected %q, got %q (fragments %v)", "Hello, world", got, fragments)
	}
	if gotAuth != "Bearer sk-live-key" {
		t.Fatalf("expected bearer credential, got %q", gotAuth)
	}
}

func TestOpenAIUpstreamErrorBeforeStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"invalid api key"}}`)
	}))
	defer server.Close()

	provider := NewOpenAIProvider(httpclients.NewClient("openai-test"), server.URL)
	_, err := provider.StreamChat(context.Background(), ChatRequest{Model: "gpt-4o-mini", APIKey: "sk-bad"})
	if err == nil {
		t.Fatal("expected error for non-2xx upstream response")
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal) {
		t.Fatalf("expected EXTERNAL error, got %v", err)
	}
}
