package audit

import (
	"time"

	"newsroom_api/internal/domain/audit/handler"
	"newsroom_api/internal/domain/audit/repository"
	"newsroom_api/internal/domain/audit/service"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/internal/pkg/registry"
	"newsroom_api/internal/pkg/worker"
	"newsroom_api/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuditModule 审核轨迹模块。需要在新闻和评论模块之前初始化，以便它们拿到 ctx.Audit。
type AuditModule struct{}

func init() {
	registry.Register(&AuditModule{})
}

func (m *AuditModule) Name() string {
	return "audit"
}

func (m *AuditModule) Priority() int {
	return 5
}

func (m *AuditModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewEventRepository(ctx.DB)
	svc := service.NewAuditService(repo, ctx.Notifier, ctx.Logger)

	cfg := ctx.Config.Audit
	pool := worker.NewWorkerPool(svc, worker.Options{
		Workers:    cfg.Workers,
		Buffer:     cfg.Buffer,
		MaxRetry:   cfg.MaxRetry,
		RetryDelay: time.Second,
		Timeout:    5 * time.Second,
	}, ctx.Logger)
	pool.Start()
	ctx.OnShutdown(pool.Stop)
	ctx.Audit = pool

	h := handler.NewAuditHandler(svc)
	setupRoutes(ctx.API, ctx.Auth(), h)
	return nil
}

func setupRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handler.AuditHandler) {
	r.GET("/audit", auth, middleware.RequireOperation(security.OpAuditRead), h.ListEvents)
}
