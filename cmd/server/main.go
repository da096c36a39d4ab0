package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "newsroom_api/internal/domain/audit"
	_ "newsroom_api/internal/domain/comment"
	_ "newsroom_api/internal/domain/common"
	_ "newsroom_api/internal/domain/news"
	_ "newsroom_api/internal/domain/user"
	"newsroom_api/internal/pkg/config"
	"newsroom_api/internal/pkg/middleware"
	"newsroom_api/internal/pkg/push"
	"newsroom_api/internal/pkg/registry"
	"newsroom_api/internal/pkg/uploader"
	"newsroom_api/pkg/cache"
	"newsroom_api/pkg/database"
	"newsroom_api/pkg/logger"
	"newsroom_api/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := &config.GlobalConfig

	zapLog, err := logger.Init(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.InitDatabase(cfg.Database.Postgres(cfg.App.Debug))
	if err != nil {
		zapLog.Fatal("failed to connect database", zap.Error(err))
	}

	rdb, err := database.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		zapLog.Fatal("failed to connect redis", zap.Error(err))
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware(zapLog))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.Origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Trace-ID"},
		ExposeHeaders:    []string{"X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	moduleCtx := &registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: r,
		API:    r.Group("/api"),
		Config: cfg,
		Logger: zapLog,
		Tokens: utils.NewTokenIssuer(cfg.JWT.Secret, time.Duration(cfg.JWT.Expire)*time.Hour),
		Cache:  cache.NewRedisCache(rdb, "newsroom:"),
	}

	// 可选服务：未配置时对应功能不可用
	if cfg.OSSEnabled() {
		u, err := uploader.NewAliyunOSSUploader(cfg.OSS)
		if err != nil {
			zapLog.Warn("oss uploader disabled", zap.Error(err))
		} else {
			moduleCtx.Uploader = u
		}
	}
	if cfg.PushEnabled() {
		n, err := push.NewAliyunPushService(cfg.Push)
		if err != nil {
			zapLog.Warn("push notifications disabled", zap.Error(err))
		} else {
			moduleCtx.Notifier = n
		}
	}

	if err := registry.InitModules(moduleCtx); err != nil {
		zapLog.Fatal("failed to init modules", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLog.Error("server forced to shutdown", zap.Error(err))
	}

	// 先停 HTTP，再停后台任务，最后关闭连接
	moduleCtx.Shutdown()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()

	zapLog.Info("server exited")
}
