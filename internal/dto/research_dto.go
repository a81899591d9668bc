package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartResearchRequest struct {
	Query string `json:"query" validate:"required,min=3,max=2000"`
	Mode  string `json:"mode" validate:"omitempty,oneof=quick standard deep"`
}

type TokenUsageDTO struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

type CitationDTO struct {
	Id        int     `json:"id"`
	Title     string  `json:"title"`
	Url       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// StartResearchResponse covers both completed shapes (quick/standard,
// or a cache hit for any mode) and the deep "still running" shape —
// fields the response doesn't need for a given path are simply omitted.
type StartResearchResponse struct {
	SessionId uuid.UUID     `json:"sessionId"`
	Mode      string        `json:"mode"`
	Status    string        `json:"status,omitempty"`
	Report    string        `json:"report,omitempty"`
	Citations []CitationDTO `json:"citations,omitempty"`
	Tokens    TokenUsageDTO `json:"tokens,omitempty"`
	FromCache bool          `json:"fromCache,omitempty"`
}

type PhaseDTO struct {
	Name       string                 `json:"name"`
	DurationMs int                    `json:"durationMs"`
	TokensUsed int                    `json:"tokensUsed"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
}

type ReportDTO struct {
	Content   string        `json:"content"`
	Citations []CitationDTO `json:"citations"`
}

type SessionSnapshotResponse struct {
	SessionId      uuid.UUID  `json:"sessionId"`
	Query          string     `json:"query"`
	Mode           string     `json:"mode"`
	Status         string     `json:"status"`
	TotalLatencyMs *int       `json:"totalLatencyMs,omitempty"`
	TotalTokens    *int       `json:"totalTokens,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	Report         *ReportDTO `json:"report,omitempty"`
	Phases         []PhaseDTO `json:"phases"`
}

type HistoryItemDTO struct {
	SessionId uuid.UUID `json:"sessionId"`
	Query     string    `json:"query"`
	Mode      string    `json:"mode"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type HistoryListResponse struct {
	Items  []HistoryItemDTO `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type DeleteSessionResponse struct {
	Deleted bool      `json:"deleted"`
	Id      uuid.UUID `json:"id"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
