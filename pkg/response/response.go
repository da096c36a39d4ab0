package response

import (
	"net/http"

	"newsroom_api/pkg/apperr"
	"newsroom_api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: msg,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// Fail 业务失败响应 (HTTP 200, 业务码非 0)
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 按错误分类输出响应。内部错误只记录日志，不把原始错误返回给调用方。
func FromError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	httpCode, errCode := Status(kind)

	if kind == apperr.KindInternal && logger.Log != nil {
		logger.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
	}

	Error(c, httpCode, errCode, apperr.MessageOf(err))
}

// Status 返回错误分类对应的 HTTP 状态码和业务码
func Status(kind apperr.Kind) (int, int) {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound, ErrNotFound
	case apperr.KindPermissionDenied:
		return http.StatusForbidden, ErrNoPermission
	case apperr.KindInvalidState:
		return http.StatusConflict, ErrInvalidState
	case apperr.KindValidation:
		return http.StatusBadRequest, ErrInvalidParam
	case apperr.KindConflict:
		return http.StatusConflict, ErrUserExists
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized, ErrAuthFailed
	default:
		return http.StatusInternalServerError, ErrServerInternal
	}
}
