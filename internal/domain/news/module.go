package news

import (
	"newsroom_api/internal/domain/news/handler"
	"newsroom_api/internal/domain/news/repository"
	"newsroom_api/internal/domain/news/service"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/internal/pkg/registry"
	"newsroom_api/pkg/security"

	"github.com/gin-gonic/gin"
)

// NewsModule 新闻模块
type NewsModule struct{}

func init() {
	registry.Register(&NewsModule{})
}

func (m *NewsModule) Name() string {
	return "news"
}

func (m *NewsModule) Priority() int {
	return 10
}

func (m *NewsModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewNewsRepository(ctx.DB)
	svc := service.NewNewsService(repo, ctx.Audit, ctx.Logger)
	h := handler.NewNewsHandler(svc)

	setupRoutes(ctx.API, ctx.Auth(), h)
	return nil
}

func setupRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handler.NewsHandler) {
	newsGroup := r.Group("/news")
	{
		// 公开路由
		newsGroup.GET("", h.ListNews)
		newsGroup.GET("/:id", h.GetNews)

		// 需要登录
		newsGroup.POST("", auth, h.CreateNews)
		newsGroup.PUT("/:id", auth, h.UpdateNews)
		newsGroup.DELETE("/:id", auth, h.DeleteNews)
		newsGroup.PATCH("/:id/review", auth, h.ReviewNews)
		newsGroup.GET("/my", auth, h.MyNews)
		newsGroup.GET("/moderation/queue", auth, middleware.RequireOperation(security.OpNewsQueue), h.Queue)
	}
}
