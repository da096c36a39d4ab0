package repository

import (
	"context"

	"newsroom_api/internal/domain/audit/model"
	"newsroom_api/pkg/apperr"

	"gorm.io/gorm"
)

// EventFilter 审核轨迹查询条件
type EventFilter struct {
	Entity   string
	EntityID string
	Action   string
	ActorID  string
}

type EventRepository interface {
	Create(ctx context.Context, event *model.ModerationEvent) error
	List(ctx context.Context, filter EventFilter, offset, limit int) ([]model.ModerationEvent, int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.ModerationEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return apperr.Internal("failed to record moderation event", err)
	}
	return nil
}

// List 最新的在前
func (r *eventRepository) List(ctx context.Context, filter EventFilter, offset, limit int) ([]model.ModerationEvent, int64, error) {
	var list []model.ModerationEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&model.ModerationEvent{})
	if filter.Entity != "" {
		query = query.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed to count moderation events", err)
	}
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, apperr.Internal("failed to list moderation events", err)
	}
	return list, total, nil
}
