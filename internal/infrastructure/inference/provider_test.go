package inference

import "testing"

func TestKindForModel(t *testing.T) {
	tests := []struct {
		model string
		want  ProviderKind
	}{
		{"claude-3-5-sonnet-20240620", KindAnthropic},
		{"claude-3-haiku-20240307", KindAnthropic},
		{"gpt-4o-mini", KindOpenAI},
		{"gpt-4o", KindOpenAI},
		{"gpt-3.5-turbo", KindOpenAI},
		{"some-future-model", KindOpenAI},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := KindForModel(tt.model); got != tt.want {
				t.Fatalf("KindForModel(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}

func TestRegistryForModel(t *testing.T) {
	openAI := &OpenAIProvider{}
	anthropic := &AnthropicProvider{}
	registry := NewRegistry(openAI, anthropic)

	p, ok := registry.ForModel("claude-3-haiku-20240307")
	if !ok || p.Kind() != KindAnthropic {
		t.Fatalf("expected anthropic provider, got %v (ok=%v)", p, ok)
	}

	p, ok = registry.ForModel("gpt-4o-mini")
	if !ok || p.Kind() != KindOpenAI {
		t.Fatalf("expected openai provider, got %v (ok=%v)", p, ok)
	}

	if _, ok := NewRegistry(openAI).ForModel("claude-3-haiku-20240307"); ok {
		t.Fatal("unregistered provider kind must not resolve")
	}
}
