package contract

import (
	"context"

	"deepresearch-be/internal/entity"

	"github.com/google/uuid"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status, totalLatencyMs, totalTokens *int) error
	FindOne(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	ListRecent(ctx context.Context, limit, offset int) ([]*entity.HistoryItem, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
