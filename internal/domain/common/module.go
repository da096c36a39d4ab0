package common

import (
	"newsroom_api/internal/domain/common/handler"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/internal/pkg/registry"
	"newsroom_api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	upload := handler.NewUploadHandler(ctx.Uploader, ctx.Logger)
	health := handler.NewHealthHandler(ctx.DB, ctx.Redis)

	setupRoutes(ctx.Router, ctx.API, ctx.Auth(), upload, health)
	return nil
}

func setupRoutes(r *gin.Engine, api *gin.RouterGroup, auth gin.HandlerFunc, upload *handler.UploadHandler, health *handler.HealthHandler) {
	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 新闻图片上传
	api.POST("/upload", auth, middleware.RequireOperation(security.OpUpload), upload.UploadFiles)
}
