package comment

import (
	"newsroom_api/internal/domain/comment/handler"
	"newsroom_api/internal/domain/comment/repository"
	"newsroom_api/internal/domain/comment/service"
	newsRepo "newsroom_api/internal/domain/news/repository"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/internal/pkg/registry"
	"newsroom_api/pkg/security"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CommentModule 评论模块
type CommentModule struct{}

func init() {
	registry.Register(&CommentModule{})
}

func (m *CommentModule) Name() string {
	return "comment"
}

func (m *CommentModule) Priority() int {
	return 20
}

func (m *CommentModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewCommentRepository(ctx.DB)
	svc := service.NewCommentService(repo, newsRepo.NewNewsRepository(ctx.DB), ctx.Audit, ctx.Logger)
	h := handler.NewCommentHandler(svc)

	// 写评论和点赞按用户限流
	limit := ctx.Config.RateLimit
	limiter := middleware.NewIPRateLimiter(rate.Limit(limit.RPS), limit.Burst)

	setupRoutes(ctx.API, ctx.Auth(), middleware.RateLimitMiddleware(limiter), h)
	return nil
}

func setupRoutes(r *gin.RouterGroup, auth, limit gin.HandlerFunc, h *handler.CommentHandler) {
	commentGroup := r.Group("/comments")
	{
		// 公开路由
		commentGroup.GET("/news/:newsId", h.ListForNews)

		// 需要登录
		commentGroup.POST("", auth, limit, h.CreateComment)
		commentGroup.GET("/my", auth, h.MyComments)
		commentGroup.GET("/moderation/queue", auth, middleware.RequireOperation(security.OpCommentQueue), h.Queue)
		commentGroup.PUT("/:id", auth, h.UpdateComment)
		commentGroup.DELETE("/:id", auth, h.DeleteComment)
		commentGroup.POST("/:id/react", auth, limit, h.React)
		commentGroup.PATCH("/:id/moderate", auth, h.ModerateComment)
	}
}
