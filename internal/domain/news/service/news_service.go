package service

import (
	"context"
	"strings"
	"time"

	"newsroom_api/internal/domain/news/model"
	"newsroom_api/internal/domain/news/repository"
	"newsroom_api/internal/pkg/worker"
	"newsroom_api/pkg/apperr"
	"newsroom_api/pkg/metrics"
	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"go.uber.org/zap"
)

const entityNews = "news"

// SubmitInput 新建新闻参数
type SubmitInput struct {
	Title          string
	Summary        string
	Content        string
	Category       string
	Tags           []string
	Sources        []model.Source
	Images         []model.Image
	IsBreakingNews bool
}

type NewsService interface {
	Submit(ctx context.Context, actor security.Identity, input SubmitInput) (*model.News, error)
	Edit(ctx context.Context, actor security.Identity, id string, fields model.Fields) (*model.News, error)
	Review(ctx context.Context, actor security.Identity, id string, decision model.Status, comments string) (*model.News, error)
	Delete(ctx context.Context, actor security.Identity, id string) error
	RecordView(ctx context.Context, id string) error
	GetPublished(ctx context.Context, id string) (*model.News, error)
	ListPublished(ctx context.Context, filter repository.NewsFilter, p utils.Pagination) ([]model.News, int64, error)
	MyNews(ctx context.Context, actor security.Identity, status model.Status, p utils.Pagination) ([]model.News, int64, error)
	Queue(ctx context.Context, actor security.Identity, status model.Status, p utils.Pagination) ([]model.News, int64, error)
}

type newsService struct {
	repo  repository.NewsRepository
	audit worker.Recorder
	log   *zap.Logger
	now   func() time.Time
}

// NewNewsService audit 可为 nil
func NewNewsService(repo repository.NewsRepository, audit worker.Recorder, log *zap.Logger) NewsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &newsService{repo: repo, audit: audit, log: log, now: time.Now}
}

// Submit 创建新闻，初始状态由角色决定
func (s *newsService) Submit(ctx context.Context, actor security.Identity, input SubmitInput) (*model.News, error) {
	if err := security.Authorize(actor, security.OpNewsCreate, false); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if err := validate(title, content, input.Summary); err != nil {
		return nil, err
	}

	news := &model.News{
		Title:          title,
		Summary:        strings.TrimSpace(input.Summary),
		Content:        content,
		Category:       strings.TrimSpace(input.Category),
		IsBreakingNews: input.IsBreakingNews,
		Status:         model.InitialStatus(actor.Role),
		AuthorID:       actor.ID,
	}

	var err error
	if news.Tags, err = model.MarshalList(input.Tags); err != nil {
		return nil, apperr.Validation("invalid tags")
	}
	if news.Sources, err = model.MarshalList(input.Sources); err != nil {
		return nil, apperr.Validation("invalid sources")
	}
	if news.Images, err = model.MarshalList(input.Images); err != nil {
		return nil, apperr.Validation("invalid images")
	}

	if err := s.repo.Create(ctx, news); err != nil {
		return nil, err
	}

	s.transition(actor, news, "submit", "", news.Status, "")
	return news, nil
}

// Edit 编辑新闻。作者修改标题或正文后重新进入审核。
func (s *newsService) Edit(ctx context.Context, actor security.Identity, id string, fields model.Fields) (*model.News, error) {
	news, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	byAuthor := actor.Owns(news.AuthorID)
	if err := security.Authorize(actor, security.OpNewsEdit, byAuthor); err != nil {
		return nil, err
	}

	if fields.Title != nil {
		t := strings.TrimSpace(*fields.Title)
		fields.Title = &t
	}
	if fields.Content != nil {
		c := strings.TrimSpace(*fields.Content)
		fields.Content = &c
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	previous, err := news.ApplyEdit(fields, byAuthor)
	if err != nil {
		return nil, apperr.Validation("invalid list field")
	}

	if err := s.repo.Update(ctx, news); err != nil {
		return nil, err
	}

	if previous != news.Status {
		s.transition(actor, news, "resubmit", previous, news.Status, "")
	}
	return news, nil
}

// Review 审核新闻，任何状态下都可以审核
func (s *newsService) Review(ctx context.Context, actor security.Identity, id string, decision model.Status, comments string) (*model.News, error) {
	if err := security.Authorize(actor, security.OpNewsReview, false); err != nil {
		return nil, err
	}
	if !decision.IsReviewDecision() {
		return nil, apperr.Validation("decision must be approved or rejected")
	}

	news, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := news.ApplyReview(decision, actor.ID, strings.TrimSpace(comments), s.now())
	if err := s.repo.Update(ctx, news); err != nil {
		return nil, err
	}

	s.transition(actor, news, "review", previous, news.Status, news.ReviewComments)
	return news, nil
}

// Delete 硬删除
func (s *newsService) Delete(ctx context.Context, actor security.Identity, id string) error {
	news, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := security.Authorize(actor, security.OpNewsDelete, actor.Owns(news.AuthorID)); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.transition(actor, news, "delete", news.Status, "", "")
	return nil
}

// RecordView 浏览数加一，只对已通过的新闻生效
func (s *newsService) RecordView(ctx context.Context, id string) error {
	return s.repo.IncrementViews(ctx, id)
}

// GetPublished 公开读取：只返回已通过的新闻并记录浏览
func (s *newsService) GetPublished(ctx context.Context, id string) (*model.News, error) {
	news, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if news.Status != model.StatusApproved {
		return nil, apperr.NotFound("news not found")
	}

	if err := s.RecordView(ctx, id); err != nil {
		s.log.Warn("failed to record view", zap.String("news_id", id), zap.Error(err))
	} else {
		news.ViewCount++
	}
	return news, nil
}

// ListPublished 公开列表，默认按发布时间倒序
func (s *newsService) ListPublished(ctx context.Context, filter repository.NewsFilter, p utils.Pagination) ([]model.News, int64, error) {
	filter.Status = model.StatusApproved
	filter.AuthorID = ""
	offset, limit := p.GetPageOffset()
	return s.repo.List(ctx, filter, "published_at", offset, limit)
}

// MyNews 当前用户的新闻
func (s *newsService) MyNews(ctx context.Context, actor security.Identity, status model.Status, p utils.Pagination) ([]model.News, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, apperr.Validation("invalid status")
	}
	offset, limit := p.GetPageOffset()
	filter := repository.NewsFilter{AuthorID: actor.ID, Status: status}
	return s.repo.List(ctx, filter, "created_at", offset, limit)
}

// Queue 审核队列，默认 pending_review，最早提交的在前
func (s *newsService) Queue(ctx context.Context, actor security.Identity, status model.Status, p utils.Pagination) ([]model.News, int64, error) {
	if err := security.Authorize(actor, security.OpNewsQueue, false); err != nil {
		return nil, 0, err
	}
	if status == "" {
		status = model.StatusPendingReview
	}
	if !status.IsValid() {
		return nil, 0, apperr.Validation("invalid status")
	}
	offset, limit := p.GetPageOffset()
	filter := repository.NewsFilter{Status: status, SortOrder: "asc"}
	return s.repo.List(ctx, filter, "created_at", offset, limit)
}

func (s *newsService) transition(actor security.Identity, news *model.News, action string, from, to model.Status, note string) {
	s.log.Info("news transition",
		zap.String("news_id", news.ID),
		zap.String("actor_id", actor.ID),
		zap.String("action", action),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	metrics.RecordTransition(entityNews, string(from), string(to))

	if s.audit == nil {
		return
	}
	s.audit.Submit(worker.Event{
		Entity:   entityNews,
		EntityID: news.ID,
		Action:   action,
		ActorID:  actor.ID,
		AuthorID: news.AuthorID,
		From:     string(from),
		To:       string(to),
		Note:     note,
		At:       s.now(),
	})
}

func validate(title, content, summary string) error {
	if title == "" || content == "" {
		return apperr.Validation("title and content are required")
	}
	if len([]rune(title)) > 200 {
		return apperr.Validation("title must be at most 200 characters")
	}
	if len([]rune(summary)) > 500 {
		return apperr.Validation("summary must be at most 500 characters")
	}
	return nil
}

func validateFields(f model.Fields) error {
	if f.Title != nil {
		if *f.Title == "" {
			return apperr.Validation("title cannot be empty")
		}
		if len([]rune(*f.Title)) > 200 {
			return apperr.Validation("title must be at most 200 characters")
		}
	}
	if f.Content != nil && *f.Content == "" {
		return apperr.Validation("content cannot be empty")
	}
	if f.Summary != nil && len([]rune(*f.Summary)) > 500 {
		return apperr.Validation("summary must be at most 500 characters")
	}
	return nil
}
