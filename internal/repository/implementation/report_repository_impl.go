package implementation

import (
	"context"
	"errors"

	"deepresearch-be/internal/entity"
	"deepresearch-be/internal/mapper"
	"deepresearch-be/internal/model"
	"deepresearch-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reportRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewReportRepository(db *gorm.DB) contract.ReportRepository {
	return &reportRepositoryImpl{db: db, mapper: mapper.NewResearchMapper()}
}

// Create is idempotent per session via the uniqueIndex on session_id:
// a concurrent or duplicate completion simply does nothing on conflict.
func (r *reportRepositoryImpl) Create(ctx context.Context, report *entity.Report) error {
	m, err := r.mapper.ReportToModel(report)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).
		Create(m).Error
	if err != nil {
		return err
	}
	mapped, err := r.mapper.ReportToEntity(m)
	if err != nil {
		return err
	}
	*report = *mapped
	return nil
}

func (r *reportRepositoryImpl) FindBySession(ctx context.Context, sessionId uuid.UUID) (*entity.Report, error) {
	var m model.Report
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionId).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ReportToEntity(&m)
}
