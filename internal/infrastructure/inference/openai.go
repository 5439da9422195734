package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"agenthub/services/chat-api/internal/utils/platformerrors"
)

// OpenAIProvider streams chat completions from an OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client  *resty.Client
	baseURL string
}

var _ Provider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(client *resty.Client, baseURL string) *OpenAIProvider {
	return &OpenAIProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *OpenAIProvider) Kind() ProviderKind {
	return KindOpenAI
}

// StreamChat implements Provider.
func (p *OpenAIProvider) StreamChat(ctx context.Context, req ChatRequest) (*ChunkStream, error) {
	body := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   true,
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept-Encoding", "identity").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", req.APIKey)).
		SetBody(body).
		Post(p.baseURL + "/chat/completions")
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "openai request failed", err)
	}
	if resp.IsError() {
		return nil, errorFromUpstream(ctx, "openai", resp)
	}

	return newChunkStream(resp.RawResponse.Body, decodeOpenAIChunk), nil
}

// decodeOpenAIChunk extracts choices[0].delta.content from one SSE payload.
// Role-only and finish-reason chunks carry no content and are skipped.
func decodeOpenAIChunk(data string) (string, bool, error) {
	if data == doneMarker {
		return "", true, nil
	}
	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		// Tolerate unparseable keepalive noise.
		return "", false, nil
	}
	if len(chunk.Choices) == 0 {
		return "", false, nil
	}
	return chunk.Choices[0].Delta.Content, false, nil
}

func errorFromUpstream(ctx context.Context, provider string, resp *resty.Response) error {
	message := fmt.Sprintf("%s upstream returned status %d", provider, resp.StatusCode())
	if resp.RawResponse != nil && resp.RawResponse.Body != nil {
		defer resp.RawResponse.Body.Close()
		if body, err := io.ReadAll(io.LimitReader(resp.RawResponse.Body, 4096)); err == nil {
			if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
				message = fmt.Sprintf("%s: %s", message, trimmed)
			}
		}
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil)
}
