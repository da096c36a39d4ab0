package service

import (
	"context"
	"fmt"

	"newsroom_api/internal/domain/audit/model"
	"newsroom_api/internal/domain/audit/repository"
	"newsroom_api/internal/pkg/push"
	"newsroom_api/internal/pkg/worker"
	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"go.uber.org/zap"
)

type AuditService interface {
	worker.Handler
	List(ctx context.Context, actor security.Identity, filter repository.EventFilter, p utils.Pagination) ([]model.ModerationEvent, int64, error)
}

type auditService struct {
	repo     repository.EventRepository
	notifier push.Notifier
	log      *zap.Logger
}

// NewAuditService notifier 可为 nil，此时不推送
func NewAuditService(repo repository.EventRepository, notifier push.Notifier, log *zap.Logger) AuditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &auditService{repo: repo, notifier: notifier, log: log}
}

// Handle 持久化事件，必要时通知作者。推送失败只记日志，不触发重试。
func (s *auditService) Handle(ctx context.Context, e worker.Event) error {
	event := model.FromWorkerEvent(e)
	if err := s.repo.Create(ctx, event); err != nil {
		return err
	}

	if s.notifier == nil || !event.NotifiesAuthor() {
		return nil
	}

	title, body := notification(event)
	ext := map[string]string{
		"entity":   event.Entity,
		"entityId": event.EntityID,
		"status":   event.ToState,
	}
	if err := s.notifier.PushToAccount(event.AuthorID, title, body, ext); err != nil {
		s.log.Warn("failed to notify author",
			zap.String("author_id", event.AuthorID),
			zap.String("entity_id", event.EntityID),
			zap.Error(err),
		)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, actor security.Identity, filter repository.EventFilter, p utils.Pagination) ([]model.ModerationEvent, int64, error) {
	if err := security.Authorize(actor, security.OpAuditRead, false); err != nil {
		return nil, 0, err
	}
	offset, limit := p.GetPageOffset()
	return s.repo.List(ctx, filter, offset, limit)
}

func notification(e *model.ModerationEvent) (string, string) {
	subject := "Your comment"
	if e.Entity == "news" {
		subject = "Your article"
	}
	title := fmt.Sprintf("%s was %s", subject, e.ToState)
	if e.Note == "" {
		return title, title
	}
	return title, fmt.Sprintf("%s: %s", title, e.Note)
}
