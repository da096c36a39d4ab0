package model

import (
	"time"

	"newsroom_api/internal/pkg/worker"

	"github.com/google/uuid"
)

// ModerationEvent 审核轨迹，只追加
type ModerationEvent struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Entity    string    `gorm:"size:16;not null;index:idx_events_entity" json:"entity"`
	EntityID  string    `gorm:"type:uuid;not null;index:idx_events_entity" json:"entityId"`
	Action    string    `gorm:"size:32;not null" json:"action"`
	ActorID   string    `gorm:"type:uuid;not null" json:"actorId"`
	AuthorID  string    `gorm:"type:uuid" json:"authorId"`
	FromState string    `gorm:"size:32" json:"from"`
	ToState   string    `gorm:"size:32" json:"to"`
	Note      string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

func (ModerationEvent) TableName() string {
	return "moderation_events"
}

// FromWorkerEvent 把队列中的事件转换为持久化记录
func FromWorkerEvent(e worker.Event) *ModerationEvent {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	return &ModerationEvent{
		ID:        uuid.New().String(),
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Action:    e.Action,
		ActorID:   e.ActorID,
		AuthorID:  e.AuthorID,
		FromState: e.From,
		ToState:   e.To,
		Note:      e.Note,
		CreatedAt: at,
	}
}

// NotifiesAuthor 审核人员改变他人内容的状态时需要通知作者
func (m *ModerationEvent) NotifiesAuthor() bool {
	if m.AuthorID == "" || m.AuthorID == m.ActorID {
		return false
	}
	switch m.Action {
	case "review", "moderate", "soft_delete":
		return m.FromState != m.ToState
	}
	return false
}
