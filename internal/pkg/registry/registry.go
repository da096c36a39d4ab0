package registry

import (
	"sort"

	"newsroom_api/internal/pkg/config"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/internal/pkg/push"
	"newsroom_api/internal/pkg/uploader"
	"newsroom_api/internal/pkg/worker"
	"newsroom_api/pkg/cache"
	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
	API    *gin.RouterGroup // /api 路由组
	Config *config.Config
	Logger *zap.Logger
	Tokens *utils.TokenIssuer
	Cache  cache.CacheService

	// 可选依赖，未配置时为 nil
	Uploader uploader.Uploader
	Notifier push.Notifier

	// 由模块在初始化时提供：user 模块提供 Identities，audit 模块提供 Audit
	Identities security.IdentityResolver
	Audit      worker.Recorder

	shutdown []func()
}

// Auth 返回认证中间件，必须在 user 模块初始化之后调用
func (c *ModuleContext) Auth() gin.HandlerFunc {
	return middleware.AuthMiddleware(c.Tokens, c.Identities)
}

// OnShutdown 注册退出时执行的清理函数
func (c *ModuleContext) OnShutdown(fn func()) {
	c.shutdown = append(c.shutdown, fn)
}

// Shutdown 按注册的逆序执行清理函数
func (c *ModuleContext) Shutdown() {
	for i := len(c.shutdown) - 1; i >= 0; i-- {
		c.shutdown[i]()
	}
	c.shutdown = nil
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// GetModules 获取所有已注册的模块
func GetModules() map[string]Module {
	return moduleRegistry
}

// InitModules 按优先级初始化所有模块，优先级相同按名称排序
func InitModules(ctx *ModuleContext) error {
	modules := make([]Module, 0, len(moduleRegistry))
	for _, m := range moduleRegistry {
		modules = append(modules, m)
	}

	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})

	for _, module := range modules {
		if err := module.Init(ctx); err != nil {
			return err
		}
		if ctx.Logger != nil {
			ctx.Logger.Info("module initialized", zap.String("module", module.Name()))
		}
	}

	return nil
}
