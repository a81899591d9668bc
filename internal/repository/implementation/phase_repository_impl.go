package implementation

import (
	"context"

	"deepresearch-be/internal/entity"
	"deepresearch-be/internal/mapper"
	"deepresearch-be/internal/model"
	"deepresearch-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type phaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewPhaseRepository(db *gorm.DB) contract.PhaseRepository {
	return &phaseRepositoryImpl{db: db, mapper: mapper.NewResearchMapper()}
}

func (r *phaseRepositoryImpl) Create(ctx context.Context, phase *entity.Phase) error {
	m := r.mapper.PhaseToModel(phase)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*phase = *r.mapper.PhaseToEntity(m)
	return nil
}

func (r *phaseRepositoryImpl) ListBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.Phase, error) {
	var rows []model.Phase
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	phases := make([]*entity.Phase, len(rows))
	for i := range rows {
		phases[i] = r.mapper.PhaseToEntity(&rows[i])
	}
	return phases, nil
}
