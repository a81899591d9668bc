package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deepresearch-be/pkg/llm"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Provider is the OpenAI-backed llm.Provider, wired through langchaingo
// so switching backends later only means adding another constructor
// alongside this one, the way the teacher's pkg/llm/ollama does for
// Ollama.
type Provider struct {
	model        llms.Model
	economyModel string
	deepModel    string
}

var _ llm.Provider = (*Provider)(nil)

func NewProvider(apiKey, economyModel, deepModel string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key required")
	}
	model, err := openai.New(openai.WithToken(apiKey))
	if err != nil {
		return nil, fmt.Errorf("openai: create client: %w", err)
	}
	return &Provider{model: model, economyModel: economyModel, deepModel: deepModel}, nil
}

func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResult, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, req.UserPrompt),
	}

	opts := []llms.CallOption{
		llms.WithModel(llm.ModelForMode(req.Mode, p.economyModel, p.deepModel)),
		llms.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := p.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return llm.ChatResult{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return llm.ChatResult{}, fmt.Errorf("openai: no response choices")
	}

	choice := resp.Choices[0]
	usage := llm.TokenUsage{}
	if info := choice.GenerationInfo; info != nil {
		if v, ok := info["PromptTokens"].(int); ok {
			usage.Input = v
		}
		if v, ok := info["CompletionTokens"].(int); ok {
			usage.Output = v
		}
		if v, ok := info["TotalTokens"].(int); ok {
			usage.Total = v
		} else {
			usage.Total = usage.Input + usage.Output
		}
	}

	return llm.ChatResult{Content: choice.Content, Usage: usage}, nil
}

// classifyError tags HTTP 400/401/403 and explicit context cancellation
// as non-retryable so the retry adapter in pkg/llm/adapter.go stops
// immediately instead of burning attempts against a request that will
// never succeed.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return &llm.NonRetryableError{Err: err}
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"400", "401", "403", "invalid_api_key", "invalid_request_error", "incorrect api key", "permission denied"} {
		if strings.Contains(msg, marker) {
			return &llm.NonRetryableError{Err: err}
		}
	}
	return err
}
