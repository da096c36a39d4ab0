package handler

import (
	"net/http"

	"newsroom_api/internal/domain/news/model"
	"newsroom_api/internal/domain/news/repository"
	"newsroom_api/internal/domain/news/service"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/pkg/response"
	"newsroom_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NewsHandler struct {
	service service.NewsService
}

func NewNewsHandler(service service.NewsService) *NewsHandler {
	return &NewsHandler{service: service}
}

// CreateNewsRequest 创建新闻请求
type CreateNewsRequest struct {
	Title          string         `json:"title" binding:"required,max=200"`
	Summary        string         `json:"summary" binding:"max=500"`
	Content        string         `json:"content" binding:"required"`
	Category       string         `json:"category" binding:"max=50"`
	Tags           []string       `json:"tags"`
	Sources        []model.Source `json:"sources"`
	Images         []model.Image  `json:"images"`
	IsBreakingNews bool           `json:"isBreakingNews"`
}

// UpdateNewsRequest 编辑新闻请求，未提供的字段不修改
type UpdateNewsRequest struct {
	Title          *string         `json:"title" binding:"omitempty,max=200"`
	Summary        *string         `json:"summary" binding:"omitempty,max=500"`
	Content        *string         `json:"content"`
	Category       *string         `json:"category" binding:"omitempty,max=50"`
	Tags           *[]string       `json:"tags"`
	Sources        *[]model.Source `json:"sources"`
	Images         *[]model.Image  `json:"images"`
	IsBreakingNews *bool           `json:"isBreakingNews"`
}

// ReviewRequest 审核请求
type ReviewRequest struct {
	Status         string `json:"status" binding:"required,oneof=approved rejected"`
	ReviewComments string `json:"reviewComments" binding:"max=1000"`
}

// ListQuery 公开列表查询参数
type ListQuery struct {
	utils.Pagination
	Category  string `form:"category"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// StatusQuery 带状态过滤的分页参数
type StatusQuery struct {
	utils.Pagination
	Status string `form:"status"`
}

// CreateNews 创建新闻
func (h *NewsHandler) CreateNews(c *gin.Context) {
	var req CreateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	news, err := h.service.Submit(c.Request.Context(), identity, service.SubmitInput{
		Title:          req.Title,
		Summary:        req.Summary,
		Content:        req.Content,
		Category:       req.Category,
		Tags:           req.Tags,
		Sources:        req.Sources,
		Images:         req.Images,
		IsBreakingNews: req.IsBreakingNews,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "News created", news)
}

// UpdateNews 编辑新闻
func (h *NewsHandler) UpdateNews(c *gin.Context) {
	var req UpdateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	news, err := h.service.Edit(c.Request.Context(), identity, c.Param("id"), model.Fields{
		Title:          req.Title,
		Summary:        req.Summary,
		Content:        req.Content,
		Category:       req.Category,
		Tags:           req.Tags,
		Sources:        req.Sources,
		Images:         req.Images,
		IsBreakingNews: req.IsBreakingNews,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, news)
}

// ReviewNews 审核新闻
func (h *NewsHandler) ReviewNews(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	news, err := h.service.Review(c.Request.Context(), identity, c.Param("id"), model.Status(req.Status), req.ReviewComments)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, news)
}

// DeleteNews 删除新闻
func (h *NewsHandler) DeleteNews(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	if err := h.service.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetNews 公开读取单篇新闻
func (h *NewsHandler) GetNews(c *gin.Context) {
	news, err := h.service.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, news)
}

// ListNews 公开新闻列表
func (h *NewsHandler) ListNews(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	list, total, err := h.service.ListPublished(c.Request.Context(), repository.NewsFilter{
		Category:  q.Category,
		Search:    q.Search,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}, q.Pagination)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, q.Pagination))
}

// MyNews 当前用户的新闻
func (h *NewsHandler) MyNews(c *gin.Context) {
	var q StatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	list, total, err := h.service.MyNews(c.Request.Context(), identity, model.Status(q.Status), q.Pagination)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, q.Pagination))
}

// Queue 审核队列
func (h *NewsHandler) Queue(c *gin.Context) {
	var q StatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	list, total, err := h.service.Queue(c.Request.Context(), identity, model.Status(q.Status), q.Pagination)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, q.Pagination))
}
