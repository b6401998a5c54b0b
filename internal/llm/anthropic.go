package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicBackend generates review responses through the Anthropic API.
type AnthropicBackend struct {
	api       *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicBackend creates a backend with the given API key and model.
func NewAnthropicBackend(apiKey, model string) *AnthropicBackend {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicBackend{
		api:       &client,
		model:     anthropic.Model(model),
		maxTokens: 4096,
	}
}

// Generate sends the prompt as a single user message and returns the first
// text block of the response.
func (b *AnthropicBackend) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := b.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     b.model,
		MaxTokens: b.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &BackendError{Err: err}
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", &BackendError{Err: errors.New("no text content in API response")}
}
