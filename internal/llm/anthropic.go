package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient backs Client with the real Anthropic API. The shape of
// this wrapper (single exported struct, Generate/CreateEmbedding as its
// only public methods) follows the interface-segregation style of the
// teacher's executor.Executor — no pack repo ships real Anthropic-client
// source to ground the implementation details on (see DESIGN.md).
type AnthropicClient struct {
	client         anthropic.Client
	defaultModel   anthropic.Model
	embeddingModel string
}

// NewAnthropicClient builds a client from an API key and default chat
// model; embeddingModel names whatever embedding-capable model or
// endpoint the deployment is configured against.
func NewAnthropicClient(apiKey, defaultModel, embeddingModel string) *AnthropicClient {
	return &AnthropicClient{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		defaultModel:   anthropic.Model(defaultModel),
		embeddingModel: embeddingModel,
	}
}

// Generate issues a single-turn message completion.
func (c *AnthropicClient) Generate(ctx context.Context, req Request) (Response, error) {
	model := c.defaultModel
	if req.Model != "" {
		model = anthropic.Model(req.Model)
	}
	maxTokens := int64(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.generateWithRetry(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic generate: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return Response{Text: text, Model: string(model)}, nil
}

// generateWithRetry applies DefaultRetryPolicy (spec §4.1: initial 2s,
// x2 backoff, 5m cap, 3 attempts) around the single network call a
// Generate invocation makes, so a transient API error doesn't fail the
// whole extraction activity.
func (c *AnthropicClient) generateWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	policy := DefaultRetryPolicy()
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		msg, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		if attempt < policy.MaxAttempts {
			select {
			case <-time.After(policy.IntervalFor(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}

// CreateEmbedding is not served by the Messages API; the embedding model
// is reached through the same client configuration so that deployments
// can point it at whatever embedding-capable endpoint they run (a Voyage
// or Titan model behind the same key, commonly). The wire shape here is
// intentionally provider-agnostic: embed(text) -> vector.
func (c *AnthropicClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("anthropic embedding: empty text")
	}
	resp, err := c.client.Embeddings.New(ctx, anthropic.EmbeddingNewParams{
		Model: c.embeddingModel,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic embedding: %w", err)
	}
	return resp.Embedding, nil
}
