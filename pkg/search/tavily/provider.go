package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"deepresearch-be/pkg/search"
)

const searchURL = "https://api.tavily.com/search"

// Provider calls the Tavily search API directly over net/http — Tavily
// has no official Go SDK, so this is a plain POST-JSON-decode client.
type Provider struct {
	APIKey string
	client *http.Client
}

var _ search.Provider = (*Provider)(nil)

func NewProvider(apiKey string, timeout time.Duration) *Provider {
	return &Provider{APIKey: apiKey, client: &http.Client{Timeout: timeout}}
}

type searchRequest struct {
	Query       string `json:"query"`
	APIKey      string `json:"api_key"`
	MaxResults  int    `json:"max_results,omitempty"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (p *Provider) Search(ctx context.Context, query string, opts search.Options) ([]search.Result, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return nil, fmt.Errorf("tavily: api key is missing")
	}

	depth := opts.Depth
	if depth == "" {
		depth = "basic"
	}

	payload, err := json.Marshal(searchRequest{
		Query:       query,
		APIKey:      p.APIKey,
		MaxResults:  opts.MaxResults,
		SearchDepth: depth,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily: http %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}

	results := make([]search.Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, search.Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Score:   r.Score,
		})
	}
	return results, nil
}
