package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"deepresearch-be/pkg/llm"
	"deepresearch-be/pkg/search"
)

type queryAnalysis struct {
	CoreQuestion string   `json:"coreQuestion"`
	SubQuestions []string `json:"subQuestions"`
	Domain       string   `json:"domain"`
	OutputType   string   `json:"outputType"`
}

// runDeep is mode 4.3.3: the six-phase pipeline. progress is called on
// every phase entry and exit; it must never block (the event bus is
// non-blocking by construction).
func (o *Orchestrator) runDeep(ctx context.Context, query string, progress ProgressFunc) (*Result, error) {
	var rows []PhaseRow
	var tokensIn, tokensOut int

	// Phase 1: query_analysis
	progress(PhaseQueryAnalysis, 5, "Analyzing the research question", nil)
	p1Start := time.Now()
	analysis, analysisTokens := o.analyzeQuery(ctx, query)
	rows = append(rows, PhaseRow{
		Name:       PhaseQueryAnalysis,
		DurationMs: int(time.Since(p1Start).Milliseconds()),
		TokensUsed: analysisTokens.Total,
	})
	tokensIn += analysisTokens.Input
	tokensOut += analysisTokens.Output
	progress(PhaseQueryAnalysis, 15, "Research question analyzed", analysis)

	// Phase 2: source_discovery
	progress(PhaseSourceDiscovery, 20, "Searching for sources", nil)
	p2Start := time.Now()
	subQueries := []string{query}
	for i, sq := range analysis.SubQuestions {
		if i >= 3 {
			break
		}
		subQueries = append(subQueries, sq)
	}
	resultSets := o.search.SearchMany(ctx, subQueries, search.Options{MaxResults: 4, Depth: "advanced"})
	sources := dedupeByURL(resultSets)
	rows = append(rows, PhaseRow{
		Name:       PhaseSourceDiscovery,
		DurationMs: int(time.Since(p2Start).Milliseconds()),
		TokensUsed: 0,
		Metadata:   map[string]interface{}{"sourcesFound": len(sources)},
	})
	progress(PhaseSourceDiscovery, 30, fmt.Sprintf("Found %d sources", len(sources)), nil)

	// Phase 3: content_extraction (skipped if no sources)
	var extraction string
	if len(sources) > 0 {
		progress(PhaseContentExtraction, 35, "Extracting key facts from sources", nil)
		p3Start := time.Now()
		chatResult, err := o.llm.Chat(ctx, llm.ChatRequest{
			SystemPrompt: extractionPrompt,
			UserPrompt:   buildSourceSummary(sources),
			Mode:         "deep",
			MaxTokens:    1500,
			Temperature:  0.2,
		})
		if err != nil {
			return nil, err
		}
		extraction = chatResult.Content
		tokensIn += chatResult.Usage.Input
		tokensOut += chatResult.Usage.Output
		rows = append(rows, PhaseRow{
			Name:       PhaseContentExtraction,
			DurationMs: int(time.Since(p3Start).Milliseconds()),
			TokensUsed: chatResult.Usage.Total,
		})
		progress(PhaseContentExtraction, 50, "Facts extracted", nil)
	}

	// Phase 4: cross_validation (skipped if extraction produced nothing)
	var validation string
	if extraction != "" {
		progress(PhaseCrossValidation, 55, "Cross-validating extracted facts", nil)
		p4Start := time.Now()
		chatResult, err := o.llm.Chat(ctx, llm.ChatRequest{
			SystemPrompt: validationPrompt,
			UserPrompt:   extraction,
			Mode:         "deep",
			MaxTokens:    1200,
			Temperature:  0.2,
		})
		if err != nil {
			return nil, err
		}
		validation = chatResult.Content
		tokensIn += chatResult.Usage.Input
		tokensOut += chatResult.Usage.Output
		rows = append(rows, PhaseRow{
			Name:       PhaseCrossValidation,
			DurationMs: int(time.Since(p4Start).Milliseconds()),
			TokensUsed: chatResult.Usage.Total,
		})
		progress(PhaseCrossValidation, 65, "Validation complete", nil)
	}

	// Phase 5: structured_synthesis
	progress(PhaseStructuredSynthesis, 70, "Synthesizing the report", nil)
	p5Start := time.Now()
	synthesisResult, err := o.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: deepSynthesisPrompt,
		UserPrompt:   buildSynthesisPrompt(query, analysis, extraction, validation, sources),
		Mode:         "deep",
		MaxTokens:    3000,
		Temperature:  0.3,
	})
	if err != nil {
		return nil, err
	}
	tokensIn += synthesisResult.Usage.Input
	tokensOut += synthesisResult.Usage.Output
	rows = append(rows, PhaseRow{
		Name:       PhaseStructuredSynthesis,
		DurationMs: int(time.Since(p5Start).Milliseconds()),
		TokensUsed: synthesisResult.Usage.Total,
	})
	progress(PhaseStructuredSynthesis, 85, "Report synthesized", nil)

	// Phase 6: citation_linking (no LLM call)
	progress(PhaseCitationLinking, 90, "Linking citations", nil)
	p6Start := time.Now()
	citations := citationsFromSources(sources)
	rows = append(rows, PhaseRow{
		Name:       PhaseCitationLinking,
		DurationMs: int(time.Since(p6Start).Milliseconds()),
		TokensUsed: 0,
	})
	progress(PhaseCitationLinking, 100, "Citations linked", nil)

	return &Result{
		Report:    synthesisResult.Content,
		Citations: citations,
		TokensIn:  tokensIn,
		TokensOut: tokensOut,
		PhaseRows: rows,
	}, nil
}

func (o *Orchestrator) analyzeQuery(ctx context.Context, query string) (queryAnalysis, llm.TokenUsage) {
	chatResult, err := o.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: queryAnalysisPrompt,
		UserPrompt:   query,
		Mode:         "deep",
		MaxTokens:    600,
		Temperature:  0.1,
		JSONMode:     true,
	})
	if err != nil {
		return queryAnalysisFallback(query), llm.TokenUsage{}
	}

	var analysis queryAnalysis
	if err := json.Unmarshal([]byte(chatResult.Content), &analysis); err != nil {
		return queryAnalysisFallback(query), chatResult.Usage
	}
	return analysis, chatResult.Usage
}

func queryAnalysisFallback(query string) queryAnalysis {
	return queryAnalysis{
		CoreQuestion: query,
		SubQuestions: []string{query},
		Domain:       "general",
		OutputType:   "analysis",
	}
}

// dedupeByURL flattens the per-query result sets in order, keeping the
// first occurrence of any URL and dropping later duplicates.
func dedupeByURL(resultSets [][]search.Result) []search.Result {
	seen := make(map[string]bool)
	var deduped []search.Result
	for _, results := range resultSets {
		for _, r := range results {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			deduped = append(deduped, r)
		}
	}
	return deduped
}

func buildSourceSummary(sources []search.Result) string {
	var b strings.Builder
	for i, s := range sources {
		snippet := s.Snippet
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, s.Title, s.URL, snippet)
	}
	return b.String()
}

func buildSynthesisPrompt(query string, analysis queryAnalysis, extraction, validation string, sources []search.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research query: %s\n\n", query)
	fmt.Fprintf(&b, "Core question: %s\nDomain: %s\nOutput type: %s\n\n", analysis.CoreQuestion, analysis.Domain, analysis.OutputType)
	if extraction != "" {
		fmt.Fprintf(&b, "Extracted insights:\n%s\n\n", extraction)
	}
	if validation != "" {
		fmt.Fprintf(&b, "Cross-validation report:\n%s\n\n", validation)
	}
	b.WriteString("Sources:\n")
	for i, s := range sources {
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s\n\n", i+1, s.Title, s.URL, s.Snippet)
	}
	return b.String()
}

