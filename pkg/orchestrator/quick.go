package orchestrator

import (
	"context"
	"time"

	"deepresearch-be/pkg/llm"
)

// runQuick is mode 4.3.1: a single LLM call, no search, no citations.
func (o *Orchestrator) runQuick(ctx context.Context, query string) (*Result, error) {
	start := time.Now()

	chatResult, err := o.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: quickPrompt,
		UserPrompt:   query,
		Mode:         "quick",
		MaxTokens:    1200,
		Temperature:  0.4,
	})
	if err != nil {
		return nil, err
	}

	duration := int(time.Since(start).Milliseconds())

	return &Result{
		Report:    chatResult.Content,
		Citations: nil,
		TokensIn:  chatResult.Usage.Input,
		TokensOut: chatResult.Usage.Output,
		PhaseRows: []PhaseRow{
			{Name: PhaseQuickSynthesis, DurationMs: duration, TokensUsed: chatResult.Usage.Total},
		},
	}, nil
}
