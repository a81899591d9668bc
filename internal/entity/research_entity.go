package entity

import (
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeQuick    Mode = "quick"
	ModeStandard Mode = "standard"
	ModeDeep     Mode = "deep"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeQuick, ModeStandard, ModeDeep:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Session is a single user-submitted research job and all of its derived state.
type Session struct {
	Id              uuid.UUID
	Query           string
	Mode            Mode
	Status          Status
	TotalLatencyMs  *int
	TotalTokens     *int
	CreatedAt       time.Time
}

// Phase is one step of the orchestrator pipeline, tracked for audit and progress.
type Phase struct {
	Id         uuid.UUID
	SessionId  uuid.UUID
	Name       string
	DurationMs int
	TokensUsed int
	Metadata   map[string]interface{}
	CreatedAt  time.Time
}

// Citation is a {id, title, url, relevance} entry referenced from a Report.
type Citation struct {
	Id        int     `json:"id"`
	Title     string  `json:"title"`
	Url       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// Report is the final markdown document produced for a Session.
type Report struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Content   string
	Citations []Citation
	CreatedAt time.Time
}

// ErrorEntry is an append-only record of a failure, optionally tied to a Session.
type ErrorEntry struct {
	Id        uuid.UUID
	SessionId *uuid.UUID
	Message   string
	Stack     string
	CreatedAt time.Time
}

// SessionWithReport is the joined view the HTTP surface renders for a
// single-session fetch: the session plus its at-most-one report and phases.
type SessionWithReport struct {
	Session *Session
	Report  *Report
	Phases  []*Phase
}

// HistoryItem is the compact listing row used by the history endpoint.
type HistoryItem struct {
	Id        uuid.UUID
	Query     string
	Mode      Mode
	Status    Status
	CreatedAt time.Time
}
