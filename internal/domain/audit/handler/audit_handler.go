package handler

import (
	"net/http"

	"newsroom_api/internal/domain/audit/repository"
	"newsroom_api/internal/domain/audit/service"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/pkg/response"
	"newsroom_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	service service.AuditService
}

func NewAuditHandler(service service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// EventQuery 审核轨迹查询参数
type EventQuery struct {
	utils.Pagination
	Entity   string `form:"entity" binding:"omitempty,oneof=news comment"`
	EntityID string `form:"entityId"`
	Action   string `form:"action"`
	ActorID  string `form:"actorId"`
}

// ListEvents 审核轨迹
func (h *AuditHandler) ListEvents(c *gin.Context) {
	var q EventQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	list, total, err := h.service.List(c.Request.Context(), identity, repository.EventFilter{
		Entity:   q.Entity,
		EntityID: q.EntityID,
		Action:   q.Action,
		ActorID:  q.ActorID,
	}, q.Pagination)
	if err != nil {
		response.FromError(c, err)
		return
	}
	q.GetPageOffset()
	response.Success(c, utils.NewPageResult(list, total, q.Pagination))
}
