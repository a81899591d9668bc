package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Session struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Query          string    `gorm:"type:text;not null"`
	Mode           string    `gorm:"type:varchar(16);not null;index"`
	Status         string    `gorm:"type:varchar(16);not null;index"`
	TotalLatencyMs *int      `gorm:"column:total_latency_ms"`
	TotalTokens    *int      `gorm:"column:total_tokens"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index:idx_sessions_created_at,sort:desc"`
}

func (Session) TableName() string {
	return "sessions"
}

type Phase struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Name       string            `gorm:"type:varchar(64);not null"`
	DurationMs int               `gorm:"column:duration_ms;not null"`
	TokensUsed int               `gorm:"column:tokens_used;not null"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`

	Session *Session `gorm:"foreignKey:SessionId;references:Id;constraint:OnDelete:CASCADE"`
}

func (Phase) TableName() string {
	return "phases"
}

type Report struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Content   string         `gorm:"type:text;not null"`
	Citations datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`

	Session *Session `gorm:"foreignKey:SessionId;references:Id;constraint:OnDelete:CASCADE"`
}

func (Report) TableName() string {
	return "reports"
}

type ErrorLog struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId *uuid.UUID `gorm:"type:uuid;index"`
	Message   string     `gorm:"type:text;not null"`
	Stack     string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`

	Session *Session `gorm:"foreignKey:SessionId;references:Id;constraint:OnDelete:SET NULL"`
}

func (ErrorLog) TableName() string {
	return "error_logs"
}
