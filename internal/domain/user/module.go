package user

import (
	"time"

	"newsroom_api/internal/domain/user/handler"
	"newsroom_api/internal/domain/user/repository"
	"newsroom_api/internal/domain/user/service"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/internal/pkg/registry"
	"newsroom_api/pkg/security"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块提供身份解析，必须最先初始化
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)

	ttl := time.Duration(0)
	if ctx.Config != nil {
		ttl = time.Duration(ctx.Config.Redis.IdentityTTL) * time.Second
	}
	identities := service.NewIdentityResolver(userRepo, ctx.Cache, ttl, ctx.Logger)
	ctx.Identities = identities

	userService := service.NewUserService(userRepo, ctx.Tokens, identities, ctx.Logger)
	userHandler := handler.NewUserHandler(userService)

	// 2. 路由注册
	setupRoutes(ctx.API, ctx.Auth(), userHandler)
	return nil
}

func setupRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handler.UserHandler) {
	// 公开路由
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// 受保护的路由
	userGroup := r.Group("/users")
	userGroup.Use(auth)
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PUT("/me", h.UpdateMe)
		userGroup.GET("", middleware.RequireOperation(security.OpUserList), h.GetUsers)
		userGroup.PATCH("/:id/role", h.AssignRole)
		userGroup.PATCH("/:id/active", h.SetActive)
	}
}
