package contract

import (
	"context"

	"deepresearch-be/internal/entity"

	"github.com/google/uuid"
)

type PhaseRepository interface {
	Create(ctx context.Context, phase *entity.Phase) error
	ListBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.Phase, error)
}
