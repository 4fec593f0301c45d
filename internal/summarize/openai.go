package summarize

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator implements Generator using the OpenAI chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates an OpenAI-backed generator.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Generate issues a single synchronous chat completion request.
func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
