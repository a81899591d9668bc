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
)

type sessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &sessionRepositoryImpl{db: db, mapper: mapper.NewResearchMapper()}
}

func (r *sessionRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *sessionRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status, totalLatencyMs, totalTokens *int) error {
	updates := map[string]interface{}{"status": string(status)}
	if totalLatencyMs != nil {
		updates["total_latency_ms"] = *totalLatencyMs
	}
	if totalTokens != nil {
		updates["total_tokens"] = *totalTokens
	}
	return r.db.WithContext(ctx).Model(&model.Session{}).Where("id = ?", id).Updates(updates).Error
}

func (r *sessionRepositoryImpl) FindOne(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var m model.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *sessionRepositoryImpl) ListRecent(ctx context.Context, limit, offset int) ([]*entity.HistoryItem, error) {
	var rows []model.Session
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]*entity.HistoryItem, len(rows))
	for i, m := range rows {
		items[i] = &entity.HistoryItem{
			Id:        m.Id,
			Query:     m.Query,
			Mode:      entity.Mode(m.Mode),
			Status:    entity.Status(m.Status),
			CreatedAt: m.CreatedAt,
		}
	}
	return items, nil
}

func (r *sessionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Session{}).Count(&count).Error
	return count, err
}

func (r *sessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
