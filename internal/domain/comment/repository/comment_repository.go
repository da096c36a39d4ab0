package repository

import (
	"context"
	"errors"

	"newsroom_api/internal/domain/comment/model"
	"newsroom_api/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentFilter 列表过滤与排序
type CommentFilter struct {
	NewsID       string
	AuthorID     string
	Status       model.Status
	TopLevelOnly bool
	SortBy       string
	SortOrder    string
}

var sortColumns = map[string]string{
	"createdAt": "comments.created_at",
	"updatedAt": "comments.updated_at",
	"likes":     "likes_count",
}

// OrderClause 生成排序子句，默认按创建时间倒序
func (f CommentFilter) OrderClause() string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "comments.created_at"
	}
	dir := "desc"
	if f.SortOrder == "asc" {
		dir = "asc"
	}
	return column + " " + dir + ", comments.created_at asc"
}

// 反应计数子查询
const reactionCounts = `comments.*,
	(SELECT COUNT(*) FROM comment_reactions r WHERE r.comment_id = comments.id AND r.kind = 'like') AS likes_count,
	(SELECT COUNT(*) FROM comment_reactions r WHERE r.comment_id = comments.id AND r.kind = 'dislike') AS dislikes_count`

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	UpdateWithEdit(ctx context.Context, comment *model.Comment, edit *model.Edit) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CommentFilter, offset, limit int) ([]model.Comment, int64, error)
	ListApprovedReplies(ctx context.Context, parentIDs []string) ([]model.Comment, error)

	GetReaction(ctx context.Context, commentID, userID string) (model.ReactionKind, error)
	SetReaction(ctx context.Context, commentID, userID string, kind model.ReactionKind) error
	CountReactions(ctx context.Context, commentID string) (likes, dislikes int64, err error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return apperr.Internal("failed to create comment", err)
	}
	return nil
}

// GetByID 读取评论及其编辑历史
func (r *commentRepository) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.WithContext(ctx).
		Preload("EditHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("edited_at asc")
		}).
		Where("id = ?", id).
		First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("comment not found")
		}
		return nil, apperr.Internal("database error", err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *model.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(comment).Error; err != nil {
		return apperr.Internal("failed to update comment", err)
	}
	return nil
}

// UpdateWithEdit 在同一事务中保存评论并追加编辑历史
func (r *commentRepository) UpdateWithEdit(ctx context.Context, comment *model.Comment, edit *model.Edit) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(comment).Error; err != nil {
			return err
		}
		if edit != nil {
			if err := tx.Create(edit).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperr.Internal("failed to update comment", err)
	}
	return nil
}

// Delete 硬删除，回复、反应和编辑历史由外键级联删除
func (r *commentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Comment{})
	if result.Error != nil {
		return apperr.Internal("failed to delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("comment not found")
	}
	return nil
}

func (r *commentRepository) List(ctx context.Context, filter CommentFilter, offset, limit int) ([]model.Comment, int64, error) {
	var list []model.Comment
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Comment{})
	if filter.NewsID != "" {
		query = query.Where("comments.news_id = ?", filter.NewsID)
	}
	if filter.AuthorID != "" {
		query = query.Where("comments.author_id = ?", filter.AuthorID)
	}
	if filter.Status != "" {
		query = query.Where("comments.status = ?", filter.Status)
	}
	if filter.TopLevelOnly {
		query = query.Where("comments.parent_comment_id IS NULL")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed to count comments", err)
	}

	err := query.
		Select(reactionCounts).
		Preload("Author").
		Preload("News").
		Order(filter.OrderClause()).
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, apperr.Internal("failed to list comments", err)
	}
	return list, total, nil
}

// ListApprovedReplies 读取一批顶级评论下全部已通过的回复，按创建时间升序
func (r *commentRepository) ListApprovedReplies(ctx context.Context, parentIDs []string) ([]model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var replies []model.Comment
	err := r.db.WithContext(ctx).
		Model(&model.Comment{}).
		Select(reactionCounts).
		Preload("Author").
		Where("comments.parent_comment_id IN ?", parentIDs).
		Where("comments.status = ?", model.StatusApproved).
		Order("comments.created_at asc").
		Find(&replies).Error
	if err != nil {
		return nil, apperr.Internal("failed to list replies", err)
	}
	return replies, nil
}

// GetReaction 返回用户当前的反应，没有反应时返回空
func (r *commentRepository) GetReaction(ctx context.Context, commentID, userID string) (model.ReactionKind, error) {
	var reaction model.Reaction
	err := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&reaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", apperr.Internal("failed to read reaction", err)
	}
	return reaction.Kind, nil
}

// SetReaction 写入反应，kind 为空表示取消
func (r *commentRepository) SetReaction(ctx context.Context, commentID, userID string, kind model.ReactionKind) error {
	db := r.db.WithContext(ctx)

	if kind == "" {
		err := db.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&model.Reaction{}).Error
		if err != nil {
			return apperr.Internal("failed to remove reaction", err)
		}
		return nil
	}

	reaction := &model.Reaction{CommentID: commentID, UserID: userID, Kind: kind}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "comment_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind"}),
	}).Create(reaction).Error
	if err != nil {
		return apperr.Internal("failed to save reaction", err)
	}
	return nil
}

func (r *commentRepository) CountReactions(ctx context.Context, commentID string) (int64, int64, error) {
	var rows []struct {
		Kind  model.ReactionKind
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("kind, COUNT(*) AS total").
		Where("comment_id = ?", commentID).
		Group("kind").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, apperr.Internal("failed to count reactions", err)
	}

	var likes, dislikes int64
	for _, row := range rows {
		switch row.Kind {
		case model.ReactionLike:
			likes = row.Total
		case model.ReactionDislike:
			dislikes = row.Total
		}
	}
	return likes, dislikes, nil
}
