package handler

import (
	"net/http"
	"strconv"

	"newsroom_api/internal/domain/user/repository"
	"newsroom_api/internal/domain/user/service"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/pkg/response"
	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileInput 资料更新输入
type ProfileInput struct {
	Name           *string `json:"name" binding:"omitempty,max=100"`
	Bio            *string `json:"bio" binding:"omitempty,max=500"`
	Avatar         *string `json:"avatar" binding:"omitempty,url"`
	Specialization *string `json:"specialization" binding:"omitempty,max=100"`
}

// RoleInput 角色修改输入
type RoleInput struct {
	Role string `json:"role" binding:"required"`
}

// ActiveInput 激活状态输入
type ActiveInput struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// Register 处理注册请求
func (h *UserHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	user, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     security.Role(input.Role),
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "Registration successful", user)
}

// Login 处理登录请求
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// GetMe 获取当前用户资料
func (h *UserHandler) GetMe(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)
	user, err := h.service.GetProfile(c.Request.Context(), identity.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateMe 更新当前用户资料
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	user, err := h.service.UpdateProfile(c.Request.Context(), identity.ID, service.ProfileInput{
		Name:           input.Name,
		Bio:            input.Bio,
		Avatar:         input.Avatar,
		Specialization: input.Specialization,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

// GetUsers 管理员获取用户列表
func (h *UserHandler) GetUsers(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	filter := repository.UserFilter{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}
	if v := c.Query("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "isActive must be a boolean")
			return
		}
		filter.IsActive = &active
	}

	users, total, err := h.service.GetUsers(c.Request.Context(), filter, p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(users, total, p))
}

// AssignRole 修改用户角色
func (h *UserHandler) AssignRole(c *gin.Context) {
	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	user, err := h.service.AssignRole(c.Request.Context(), identity, c.Param("id"), security.Role(input.Role))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}

// SetActive 启用/停用用户
func (h *UserHandler) SetActive(c *gin.Context) {
	var input ActiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	user, err := h.service.SetActive(c.Request.Context(), identity, c.Param("id"), *input.IsActive)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, user)
}
