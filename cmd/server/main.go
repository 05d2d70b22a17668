package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkwell/internal/cache"
	"github.com/inkwell/internal/config"
	"github.com/inkwell/internal/db"
	"github.com/inkwell/internal/draft"
	"github.com/inkwell/internal/handler"
	"github.com/inkwell/internal/logging"
	"github.com/inkwell/internal/metrics"
	"github.com/inkwell/internal/render"
	"github.com/inkwell/internal/router"
	"github.com/inkwell/internal/service"
	"github.com/inkwell/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDriver, cfg.DSN()); err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to initialize database")
	}
	if err := db.EnsureUser(db.DB, cfg.SuperRootUserName, cfg.SuperRootPassword, db.RoleWriter, db.RoleAdmin); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure super root user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisCache := cache.Connect(ctx, cfg.RedisURL, logger)
	defer redisCache.Close()

	m := metrics.New()
	// 已发布文章变动时，文章列表与标签/分类计数一起失效
	manager := draft.NewManager(store.NewPostStore(db.DB, redisCache.InvalidateTaxonomy), draft.Options{
		Interval:    cfg.AutosaveInterval,
		IdleTimeout: cfg.SessionIdleTimeout,
		Logger:      &logger,
		Observer:    m,
	})
	managerDone := make(chan struct{})
	go func() {
		defer close(managerDone)
		manager.Run(ctx)
	}()

	api := handler.NewAPI(handler.Deps{
		Manager:       manager,
		Posts:         service.NewPostService(db.DB, redisCache, render.New()),
		Tags:          service.NewTagService(db.DB, redisCache),
		Categories:    service.NewCategoryService(db.DB, redisCache),
		Users:         service.NewUserService(db.DB),
		Logger:        logger,
		JWTSecret:     cfg.JWTSecret,
		SecureCookies: cfg.SecureCookies,
	})

	// 设置并运行 Gin 服务器
	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: router.SetupRouter(api, router.Options{
			SessionSecret: cfg.SessionSecret,
			SecureCookies: cfg.SecureCookies,
			Logger:        logger,
			Metrics:       m,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Str("driver", cfg.DatabaseDriver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to run server")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	<-managerDone
}
