package contract

import (
	"context"

	"deepresearch-be/internal/entity"

	"github.com/google/uuid"
)

type ReportRepository interface {
	// Create is idempotent per session: calling it twice for the same
	// SessionId is a no-op on the second call rather than an error.
	Create(ctx context.Context, report *entity.Report) error
	FindBySession(ctx context.Context, sessionId uuid.UUID) (*entity.Report, error)
}
