package handler

import (
	"net/http"

	"newsroom_api/internal/domain/comment/model"
	"newsroom_api/internal/domain/comment/service"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/pkg/response"
	"newsroom_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service service.CommentService
}

func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	NewsID          string `json:"newsId" binding:"required"`
	ParentCommentID string `json:"parentCommentId"`
}

// UpdateCommentRequest 编辑评论请求
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// DeleteCommentRequest 删除评论，审核人员删除他人评论时可附带原因
type DeleteCommentRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes" binding:"max=500"`
}

// ModerateRequest 审核请求
type ModerateRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected flagged"`
	Reason string `json:"reason"`
	Notes  string `json:"notes" binding:"max=500"`
}

// ReactRequest 点赞/点踩
type ReactRequest struct {
	Type string `json:"type" binding:"required,oneof=like dislike"`
}

// ListQuery 新闻评论列表参数
type ListQuery struct {
	utils.Pagination
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=createdAt updatedAt likes"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// StatusQuery 带状态过滤的分页参数
type StatusQuery struct {
	utils.Pagination
	Status string `form:"status"`
}

// DeleteResult 删除结果
type DeleteResult struct {
	SoftDeleted bool `json:"softDeleted"`
}

// CreateComment 发表评论或回复
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	comment, err := h.service.Create(c.Request.Context(), identity, service.CreateInput{
		Content:         req.Content,
		NewsID:          req.NewsID,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	msg := "Comment submitted for moderation"
	if comment.Status == model.StatusApproved {
		msg = "Comment published"
	}
	response.Created(c, msg, comment)
}

// UpdateComment 编辑评论
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	comment, err := h.service.Edit(c.Request.Context(), identity, c.Param("id"), req.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comment)
}

// DeleteComment 删除评论。请求体可以为空。
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	var req DeleteCommentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
			return
		}
	}

	identity, _ := middleware.CurrentIdentity(c)
	soft, err := h.service.Delete(c.Request.Context(), identity, c.Param("id"), model.Reason(req.Reason), req.Notes)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, DeleteResult{SoftDeleted: soft})
}

// ModerateComment 审核评论
func (h *CommentHandler) ModerateComment(c *gin.Context) {
	var req ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	comment, err := h.service.Moderate(c.Request.Context(), identity, c.Param("id"),
		model.Status(req.Status), model.Reason(req.Reason), req.Notes)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, comment)
}

// React 点赞/点踩，重复提交同一类型即取消
func (h *CommentHandler) React(c *gin.Context) {
	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	result, err := h.service.React(c.Request.Context(), identity, c.Param("id"), model.ReactionKind(req.Type))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// ListForNews 新闻下已通过的评论
func (h *CommentHandler) ListForNews(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	list, total, err := h.service.ListApprovedForNews(c.Request.Context(), c.Param("newsId"), q.Pagination, q.SortBy, q.SortOrder)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, pageOf(q.Pagination)))
}

// MyComments 当前用户的评论
func (h *CommentHandler) MyComments(c *gin.Context) {
	var q StatusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	list, total, err := h.service.MyComments(c.Request.Context(), identity, model.Status(q.Status), q.Pagination)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(list, total, pageOf(q.Pagination)))
}

// Queue 评论审核队列
func (h *CommentHandler) Queue(c *gin.Context) {
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
	response.Success(c, utils.NewPageResult(list, total, pageOf(q.Pagination)))
}

// pageOf 补齐与服务层一致的默认分页
func pageOf(p utils.Pagination) utils.Pagination {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	p.GetPageOffset()
	return p
}
