package implementation

import (
	"context"

	"deepresearch-be/internal/entity"
	"deepresearch-be/internal/mapper"
	"deepresearch-be/internal/repository/contract"

	"gorm.io/gorm"
)

type errorLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewErrorLogRepository(db *gorm.DB) contract.ErrorLogRepository {
	return &errorLogRepositoryImpl{db: db, mapper: mapper.NewResearchMapper()}
}

func (r *errorLogRepositoryImpl) Create(ctx context.Context, entry *entity.ErrorEntry) error {
	m := r.mapper.ErrorLogToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ErrorLogToEntity(m)
	return nil
}
