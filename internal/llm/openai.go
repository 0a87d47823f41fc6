package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/aetherhq/prdgen/pkg/prd"
)

const defaultModel = "gpt-4.1-mini"

// OpenAIClient implements Client using the official openai-go SDK
// (chat completions).
type OpenAIClient struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIClient builds an OpenAIClient from settings.
func NewOpenAIClient(cfg Settings) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{model: model, opts: opts}, nil
}

// Generate issues one chat completion and returns the first choice's content.
// Network, auth and malformed-response failures all collapse into a single
// LLM_ERROR; callers do not distinguish failure subtypes.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	client := openai.NewClient(c.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", prd.NewError(prd.ErrCodeLLM, "llm call failed").WithCause(err)
	}
	if len(resp.Choices) == 0 {
		return "", prd.NewError(prd.ErrCodeLLM, "llm returned empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
