package service

import (
	"context"
	"strings"
	"time"

	"newsroom_api/internal/domain/comment/model"
	"newsroom_api/internal/domain/comment/repository"
	newsModel "newsroom_api/internal/domain/news/model"
	"newsroom_api/internal/pkg/worker"
	"newsroom_api/pkg/apperr"
	"newsroom_api/pkg/metrics"
	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"go.uber.org/zap"
)

const (
	entityComment = "comment"
	// 评论列表默认每页条数
	defaultPageSize = 20
)

// NewsReader 评论模块需要的新闻查询
type NewsReader interface {
	GetByID(ctx context.Context, id string) (*newsModel.News, error)
}

// CreateInput 创建评论参数
type CreateInput struct {
	Content         string
	NewsID          string
	ParentCommentID string
}

type CommentService interface {
	Create(ctx context.Context, actor security.Identity, input CreateInput) (*model.Comment, error)
	Edit(ctx context.Context, actor security.Identity, id, content string) (*model.Comment, error)
	// Delete 返回 true 表示软删除（标记为 rejected），false 表示已物理删除
	Delete(ctx context.Context, actor security.Identity, id string, reason model.Reason, notes string) (bool, error)
	Moderate(ctx context.Context, actor security.Identity, id string, status model.Status, reason model.Reason, notes string) (*model.Comment, error)
	React(ctx context.Context, actor security.Identity, id string, kind model.ReactionKind) (*model.ReactionResult, error)
	ListApprovedForNews(ctx context.Context, newsID string, p utils.Pagination, sortBy, sortOrder string) ([]model.Comment, int64, error)
	MyComments(ctx context.Context, actor security.Identity, status model.Status, p utils.Pagination) ([]model.Comment, int64, error)
	Queue(ctx context.Context, actor security.Identity, status model.Status, p utils.Pagination) ([]model.Comment, int64, error)
}

type commentService struct {
	repo  repository.CommentRepository
	news  NewsReader
	audit worker.Recorder
	log   *zap.Logger
	now   func() time.Time
}

// NewCommentService audit 可为 nil
func NewCommentService(repo repository.CommentRepository, news NewsReader, audit worker.Recorder, log *zap.Logger) CommentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &commentService{repo: repo, news: news, audit: audit, log: log, now: time.Now}
}

// Create 发表评论或回复。新闻必须已通过；父评论必须存在、属于同一新闻且已通过。
// 回复一条回复时挂到其顶级评论下，线程深度保持为 2。
func (s *commentService) Create(ctx context.Context, actor security.Identity, input CreateInput) (*model.Comment, error) {
	if err := security.Authorize(actor, security.OpCommentCreate, false); err != nil {
		return nil, err
	}

	content, err := normalizeContent(input.Content)
	if err != nil {
		return nil, err
	}

	news, err := s.news.GetByID(ctx, input.NewsID)
	if err != nil {
		return nil, err
	}
	if news.Status != newsModel.StatusApproved {
		return nil, apperr.NotFound("news not found or not published")
	}

	comment := &model.Comment{
		Content:  content,
		AuthorID: actor.ID,
		NewsID:   news.ID,
		Status:   model.InitialStatus(actor.Role),
	}

	if input.ParentCommentID != "" {
		parent, err := s.repo.GetByID(ctx, input.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.NewsID != news.ID || parent.Status != model.StatusApproved {
			return nil, apperr.NotFound("parent comment not found")
		}
		root := parent.ThreadRoot()
		comment.ParentCommentID = &root
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.transition(actor, comment, "create", "", comment.Status, "")
	return comment, nil
}

// Edit 只有作者可以编辑；rejected 不可编辑；approved 编辑后重新待审核
func (s *commentService) Edit(ctx context.Context, actor security.Identity, id, content string) (*model.Comment, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := security.Authorize(actor, security.OpCommentEdit, actor.Owns(comment.AuthorID)); err != nil {
		return nil, err
	}

	previous, edit, err := comment.ApplyEdit(content, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateWithEdit(ctx, comment, edit); err != nil {
		return nil, err
	}

	if previous != comment.Status {
		s.transition(actor, comment, "edit", previous, comment.Status, "")
	}
	return comment, nil
}

// Delete 作者物理删除；审核人员删除他人评论时改为 rejected
func (s *commentService) Delete(ctx context.Context, actor security.Identity, id string, reason model.Reason, notes string) (bool, error) {
	if !reason.IsValid() {
		return false, apperr.Validation("invalid moderation reason")
	}

	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	if actor.Owns(comment.AuthorID) {
		if err := security.Authorize(actor, security.OpCommentHardDelete, true); err != nil {
			return false, err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return false, err
		}
		s.transition(actor, comment, "delete", comment.Status, "", "")
		return false, nil
	}

	if err := security.Authorize(actor, security.OpCommentSoftDelete, false); err != nil {
		return false, err
	}

	if reason == "" {
		reason = model.ReasonOther
	}
	previous := comment.ApplyModeration(model.StatusRejected, actor.ID, reason, strings.TrimSpace(notes))
	if err := s.repo.Update(ctx, comment); err != nil {
		return false, err
	}

	s.transition(actor, comment, "soft_delete", previous, comment.Status, string(reason))
	return true, nil
}

// Moderate 审核评论，任何状态都可以重新分类；未给出原因时记为 other
func (s *commentService) Moderate(ctx context.Context, actor security.Identity, id string, status model.Status, reason model.Reason, notes string) (*model.Comment, error) {
	if err := security.Authorize(actor, security.OpCommentModerate, false); err != nil {
		return nil, err
	}
	if !status.IsModerationDecision() {
		return nil, apperr.Validation("status must be approved, rejected or flagged")
	}
	if !reason.IsValid() {
		return nil, apperr.Validation("invalid moderation reason")
	}

	comment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = model.ReasonOther
	}
	previous := comment.ApplyModeration(status, actor.ID, reason, strings.TrimSpace(notes))
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, err
	}

	s.transition(actor, comment, "moderate", previous, comment.Status, string(reason))
	return comment, nil
}

// React 点赞/点踩，同类型再次提交即取消
func (s *commentService) React(ctx context.Context, actor security.Identity, id string, kind model.ReactionKind) (*model.ReactionResult, error) {
	if err := security.Authorize(actor, security.OpCommentReact, false); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, apperr.Validation("reaction must be like or dislike")
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	current, err := s.repo.GetReaction(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	next := model.ToggleReaction(current, kind)
	if err := s.repo.SetReaction(ctx, id, actor.ID, next); err != nil {
		return nil, err
	}
	metrics.RecordReaction(string(kind), model.ReactionChange(current, next))

	likes, dislikes, err := s.repo.CountReactions(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &model.ReactionResult{Likes: likes, Dislikes: dislikes}
	if next != "" {
		result.UserReaction = &next
	}
	return result, nil
}

// ListApprovedForNews 新闻下已通过的顶级评论，每条附带最多 10 条已通过回复
func (s *commentService) ListApprovedForNews(ctx context.Context, newsID string, p utils.Pagination, sortBy, sortOrder string) ([]model.Comment, int64, error) {
	if _, err := s.news.GetByID(ctx, newsID); err != nil {
		return nil, 0, err
	}

	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	offset, limit := p.GetPageOffset()

	filter := repository.CommentFilter{
		NewsID:       newsID,
		Status:       model.StatusApproved,
		TopLevelOnly: true,
		SortBy:       sortBy,
		SortOrder:    sortOrder,
	}
	comments, total, err := s.repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if len(comments) == 0 {
		return comments, total, nil
	}

	ids := make([]string, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}
	replies, err := s.repo.ListApprovedReplies(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	AttachReplies(comments, replies, model.MaxRepliesPerComment)
	return comments, total, nil
}

// AttachReplies 把回复挂到顶级评论上，超出上限的部分只计数不返回
func AttachReplies(comments []model.Comment, replies []model.Comment, max int) {
	index := make(map[string]int, len(comments))
	for i := range comments {
		index[comments[i].ID] = i
		comments[i].Replies = []model.Comment{}
		comments[i].ReplyCount = 0
	}

	for _, reply := range replies {
		if reply.ParentCommentID == nil {
			continue
		}
		i, ok := index[*reply.ParentCommentID]
		if !ok {
			continue
		}
		comments[i].ReplyCount++
		if len(comments[i].Replies) < max {
			comments[i].Replies = append(comments[i].Replies, reply)
		}
	}
}

// MyComments 当前用户的评论
func (s *commentService) MyComments(ctx context.Context, actor security.Identity, status model.Status, p utils.Pagination) ([]model.Comment, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, apperr.Validation("invalid status")
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	offset, limit := p.GetPageOffset()
	return s.repo.List(ctx, repository.CommentFilter{AuthorID: actor.ID, Status: status}, offset, limit)
}

// Queue 审核队列，默认 pending，最早的在前
func (s *commentService) Queue(ctx context.Context, actor security.Identity, status model.Status, p utils.Pagination) ([]model.Comment, int64, error) {
	if err := security.Authorize(actor, security.OpCommentQueue, false); err != nil {
		return nil, 0, err
	}
	if status == "" {
		status = model.StatusPending
	}
	if !status.IsValid() {
		return nil, 0, apperr.Validation("invalid status")
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	offset, limit := p.GetPageOffset()
	filter := repository.CommentFilter{Status: status, SortBy: "createdAt", SortOrder: "asc"}
	return s.repo.List(ctx, filter, offset, limit)
}

func (s *commentService) transition(actor security.Identity, comment *model.Comment, action string, from, to model.Status, note string) {
	s.log.Info("comment transition",
		zap.String("comment_id", comment.ID),
		zap.String("news_id", comment.NewsID),
		zap.String("actor_id", actor.ID),
		zap.String("action", action),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	metrics.RecordTransition(entityComment, string(from), string(to))

	if s.audit == nil {
		return
	}
	s.audit.Submit(worker.Event{
		Entity:   entityComment,
		EntityID: comment.ID,
		Action:   action,
		ActorID:  actor.ID,
		AuthorID: comment.AuthorID,
		From:     string(from),
		To:       string(to),
		Note:     note,
		At:       s.now(),
	})
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Validation("content is required")
	}
	if len([]rune(content)) > model.MaxContentLength {
		return "", apperr.Validation("content must be at most 1000 characters")
	}
	return content, nil
}
