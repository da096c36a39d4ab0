package repository

import (
	"context"
	"errors"

	"newsroom_api/internal/domain/news/model"
	"newsroom_api/pkg/apperr"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewsFilter 列表过滤与排序
type NewsFilter struct {
	Status    model.Status
	AuthorID  string
	Category  string
	Search    string
	SortBy    string
	SortOrder string
}

// 排序字段白名单
var sortColumns = map[string]string{
	"publishedAt": "published_at",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"viewCount":   "view_count",
	"title":       "title",
}

// OrderClause 生成排序子句，未知字段回退到 fallback
func (f NewsFilter) OrderClause(fallback string) string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = fallback
	}
	dir := "desc"
	if f.SortOrder == "asc" {
		dir = "asc"
	}
	// 相同排序值按创建顺序
	return column + " " + dir + ", created_at asc"
}

type NewsRepository interface {
	Create(ctx context.Context, news *model.News) error
	GetByID(ctx context.Context, id string) (*model.News, error)
	GetDetail(ctx context.Context, id string) (*model.News, error)
	Update(ctx context.Context, news *model.News) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	List(ctx context.Context, filter NewsFilter, fallbackSort string, offset, limit int) ([]model.News, int64, error)
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, news *model.News) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(news).Error; err != nil {
		return apperr.Internal("failed to create news", err)
	}
	return nil
}

// GetByID 只读取新闻本身，供生命周期操作使用
func (r *newsRepository) GetByID(ctx context.Context, id string) (*model.News, error) {
	var news model.News
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&news).Error; err != nil {
		return nil, translate(err)
	}
	return &news, nil
}

// GetDetail 读取新闻并预加载作者和审核人摘要
func (r *newsRepository) GetDetail(ctx context.Context, id string) (*model.News, error) {
	var news model.News
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Reviewer").
		Where("id = ?", id).
		First(&news).Error
	if err != nil {
		return nil, translate(err)
	}
	return &news, nil
}

func (r *newsRepository) Update(ctx context.Context, news *model.News) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(news).Error; err != nil {
		return apperr.Internal("failed to update news", err)
	}
	return nil
}

func (r *newsRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.News{})
	if result.Error != nil {
		return apperr.Internal("failed to delete news", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("news not found")
	}
	return nil
}

// IncrementViews 原子增加浏览数，只对已通过的新闻生效
func (r *newsRepository) IncrementViews(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.News{}).
		Where("id = ? AND status = ?", id, model.StatusApproved).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return apperr.Internal("failed to record view", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("news not found")
	}
	return nil
}

func (r *newsRepository) List(ctx context.Context, filter NewsFilter, fallbackSort string, offset, limit int) ([]model.News, int64, error) {
	var list []model.News
	var total int64

	query := r.db.WithContext(ctx).Model(&model.News{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("(title ILIKE ? OR content ILIKE ?)", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed to count news", err)
	}

	err := query.
		Preload("Author").
		Preload("Reviewer").
		Order(filter.OrderClause(fallbackSort)).
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, apperr.Internal("failed to list news", err)
	}
	return list, total, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("news not found")
	}
	return apperr.Internal("database error", err)
}
