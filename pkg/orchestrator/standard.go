package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deepresearch-be/internal/entity"
	"deepresearch-be/pkg/llm"
	"deepresearch-be/pkg/search"
)

// runStandard is mode 4.3.2: source discovery followed by one
// source-grounded synthesis call.
func (o *Orchestrator) runStandard(ctx context.Context, query string) (*Result, error) {
	discoveryStart := time.Now()
	sources := o.search.Search(ctx, query, search.Options{MaxResults: 5, Depth: "basic"})
	discoveryDuration := int(time.Since(discoveryStart).Milliseconds())

	synthesisStart := time.Now()
	chatResult, err := o.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: standardPrompt,
		UserPrompt:   buildStandardUserPrompt(query, sources),
		Mode:         "standard",
		MaxTokens:    2000,
		Temperature:  0.3,
	})
	if err != nil {
		return nil, err
	}
	synthesisDuration := int(time.Since(synthesisStart).Milliseconds())

	return &Result{
		Report:    chatResult.Content,
		Citations: citationsFromSources(sources),
		TokensIn:  chatResult.Usage.Input,
		TokensOut: chatResult.Usage.Output,
		PhaseRows: []PhaseRow{
			{
				Name:       PhaseSourceDiscovery,
				DurationMs: discoveryDuration,
				TokensUsed: 0,
				Metadata:   map[string]interface{}{"sourcesFound": len(sources)},
			},
			{
				Name:       PhaseStructuredSynthesis,
				DurationMs: synthesisDuration,
				TokensUsed: chatResult.Usage.Total,
			},
		},
	}, nil
}

func buildStandardUserPrompt(query string, sources []search.Result) string {
	var b strings.Builder
	b.WriteString("Research query: ")
	b.WriteString(query)
	b.WriteString("\n\nSources:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, s.Title, s.URL, s.Snippet)
	}
	return b.String()
}

// citationsFromSources renumbers discovered sources 1..N in discovery
// order, using each source's relevance score as-is.
func citationsFromSources(sources []search.Result) []entity.Citation {
	citations := make([]entity.Citation, 0, len(sources))
	for i, s := range sources {
		citations = append(citations, entity.Citation{
			Id:        i + 1,
			Title:     s.Title,
			Url:       s.URL,
			Relevance: s.Score,
		})
	}
	return citations
}
