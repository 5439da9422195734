package inference

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ProviderKind names an upstream inference backend.
type ProviderKind string

const (
	KindOpenAI    ProviderKind = "openai"
	KindAnthropic ProviderKind = "anthropic"
)

// ChatRequest is one upstream completion call: the ordered message list is
// system prompt first, then history, then the new user message.
type ChatRequest struct {
	Model    string
	Messages []openai.ChatCompletionMessage
	APIKey   string
}

// Provider streams chat completions from one backend.
type Provider interface {
	Kind() ProviderKind
	StreamChat(ctx context.Context, req ChatRequest) (*ChunkStream, error)
}

// binding ties a model-id prefix to a provider. The table keeps call sites
// free of provider switches: resolution happens here and nowhere else.
type binding struct {
	kind        ProviderKind
	modelPrefix string
}

var bindings = []binding{
	{kind: KindAnthropic, modelPrefix: "claude"},
}

// KindForModel resolves the backend for a model id. Anything without a bound
// prefix goes to OpenAI.
func KindForModel(model string) ProviderKind {
	for _, b := range bindings {
		if strings.HasPrefix(model, b.modelPrefix) {
			return b.kind
		}
	}
	return KindOpenAI
}

// Registry holds the configured provider set.
type Registry struct {
	providers map[ProviderKind]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[ProviderKind]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Kind()] = p
	}
	return r
}

// ForModel returns the provider serving the given model id.
func (r *Registry) ForModel(model string) (Provider, bool) {
	p, ok := r.providers[KindForModel(model)]
	return p, ok
}
