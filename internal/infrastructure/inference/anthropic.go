package inference

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"agenthub/services/chat-api/internal/utils/platformerrors"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

// AnthropicProvider streams chat completions from the Anthropic Messages API.
type AnthropicProvider struct {
	client  *resty.Client
	baseURL string
}

var _ Provider = (*AnthropicProvider)(nil)

func NewAnthropicProvider(client *resty.Client, baseURL string) *AnthropicProvider {
	return &AnthropicProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *AnthropicProvider) Kind() ProviderKind {
	return KindAnthropic
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream"`
}

type anthropicEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// StreamChat implements Provider. System messages are hoisted into the
// top-level system field as the Messages API requires.
func (p *AnthropicProvider) StreamChat(ctx context.Context, req ChatRequest) (*ChunkStream, error) {
	body := anthropicRequest{
		Model:     req.Model,
		MaxTokens: anthropicMaxTokens,
		Stream:    true,
	}
	var system []string
	for _, msg := range req.Messages {
		if msg.Role == openai.ChatMessageRoleSystem {
			system = append(system, msg.Content)
			continue
		}
		body.Messages = append(body.Messages, anthropicMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	body.System = strings.Join(system, "\n\n")

	resp, err := p.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept-Encoding", "identity").
		SetHeader("x-api-key", req.APIKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetBody(body).
		Post(p.baseURL + "/v1/messages")
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "anthropic request failed", err)
	}
	if resp.IsError() {
		return nil, errorFromUpstream(ctx, "anthropic", resp)
	}

	return newChunkStream(resp.RawResponse.Body, decodeAnthropicChunk), nil
}

// decodeAnthropicChunk emits text only for content_block_delta events carrying
// a text_delta. message_start/stop, content_block_start/stop and ping events
// produce nothing.
func decodeAnthropicChunk(data string) (string, bool, error) {
	var event anthropicEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return "", false, nil
	}
	switch event.Type {
	case "message_stop":
		return "", true, nil
	case "content_block_delta":
		if event.Delta.Type == "text_delta" {
			return event.Delta.Text, false, nil
		}
	}
	return "", false, nil
}
