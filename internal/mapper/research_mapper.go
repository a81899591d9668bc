package mapper

import (
	"encoding/json"

	"deepresearch-be/internal/entity"
	"deepresearch-be/internal/model"

	"gorm.io/datatypes"
)

type ResearchMapper struct{}

func NewResearchMapper() *ResearchMapper {
	return &ResearchMapper{}
}

func (m *ResearchMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:             s.Id,
		Query:          s.Query,
		Mode:           entity.Mode(s.Mode),
		Status:         entity.Status(s.Status),
		TotalLatencyMs: s.TotalLatencyMs,
		TotalTokens:    s.TotalTokens,
		CreatedAt:      s.CreatedAt,
	}
}

func (m *ResearchMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:             s.Id,
		Query:          s.Query,
		Mode:           string(s.Mode),
		Status:         string(s.Status),
		TotalLatencyMs: s.TotalLatencyMs,
		TotalTokens:    s.TotalTokens,
		CreatedAt:      s.CreatedAt,
	}
}

func (m *ResearchMapper) PhaseToEntity(p *model.Phase) *entity.Phase {
	if p == nil {
		return nil
	}
	return &entity.Phase{
		Id:         p.Id,
		SessionId:  p.SessionId,
		Name:       p.Name,
		DurationMs: p.DurationMs,
		TokensUsed: p.TokensUsed,
		Metadata:   map[string]interface{}(p.Metadata),
		CreatedAt:  p.CreatedAt,
	}
}

func (m *ResearchMapper) PhaseToModel(p *entity.Phase) *model.Phase {
	if p == nil {
		return nil
	}
	return &model.Phase{
		Id:         p.Id,
		SessionId:  p.SessionId,
		Name:       p.Name,
		DurationMs: p.DurationMs,
		TokensUsed: p.TokensUsed,
		Metadata:   datatypes.JSONMap(p.Metadata),
		CreatedAt:  p.CreatedAt,
	}
}

func (m *ResearchMapper) ReportToEntity(r *model.Report) (*entity.Report, error) {
	if r == nil {
		return nil, nil
	}
	var citations []entity.Citation
	if len(r.Citations) > 0 {
		if err := json.Unmarshal(r.Citations, &citations); err != nil {
			return nil, err
		}
	}
	return &entity.Report{
		Id:        r.Id,
		SessionId: r.SessionId,
		Content:   r.Content,
		Citations: citations,
		CreatedAt: r.CreatedAt,
	}, nil
}

func (m *ResearchMapper) ReportToModel(r *entity.Report) (*model.Report, error) {
	if r == nil {
		return nil, nil
	}
	raw, err := json.Marshal(r.Citations)
	if err != nil {
		return nil, err
	}
	return &model.Report{
		Id:        r.Id,
		SessionId: r.SessionId,
		Content:   r.Content,
		Citations: datatypes.JSON(raw),
		CreatedAt: r.CreatedAt,
	}, nil
}

func (m *ResearchMapper) ErrorLogToEntity(e *model.ErrorLog) *entity.ErrorEntry {
	if e == nil {
		return nil
	}
	return &entity.ErrorEntry{
		Id:        e.Id,
		SessionId: e.SessionId,
		Message:   e.Message,
		Stack:     e.Stack,
		CreatedAt: e.CreatedAt,
	}
}

func (m *ResearchMapper) ErrorLogToModel(e *entity.ErrorEntry) *model.ErrorLog {
	if e == nil {
		return nil
	}
	return &model.ErrorLog{
		Id:        e.Id,
		SessionId: e.SessionId,
		Message:   e.Message,
		Stack:     e.Stack,
		CreatedAt: e.CreatedAt,
	}
}
