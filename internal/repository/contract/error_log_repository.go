package contract

import (
	"context"

	"deepresearch-be/internal/entity"
)

type ErrorLogRepository interface {
	Create(ctx context.Context, entry *entity.ErrorEntry) error
}
