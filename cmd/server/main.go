// Package main runs the video generation API with a live WebSocket feed and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sora2-studio/backend/config"
	"github.com/sora2-studio/backend/internal/realtime"
	"github.com/sora2-studio/backend/internal/server"
	"github.com/sora2-studio/backend/internal/videos"
	"github.com/sora2-studio/backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Server.Debug)
	defer logger.Sync()

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Live feed; Redis is optional and only used for cross-instance fan-out.
	var hub *realtime.Hub
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, pubsub, pubsub)
	} else {
		hub = realtime.NewHub(logger, nil, nil)
	}

	// Videos
	videoRepo := videos.NewRepository()
	videoHandler := videos.NewHandler(videoRepo, logger)
	videoHandler.SetNotifier(hub)

	router := server.NewRouter(server.Deps{
		Config: cfg,
		Videos: videoHandler,
		Hub:    hub,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("service", cfg.Service.Name),
			zap.String("url", "http://localhost:"+cfg.Server.Port),
			zap.Bool("debug", cfg.Server.Debug),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped", zap.Int("videos", videoRepo.Count()))
}

func newLogger(debug bool) *zap.Logger {
	config := zap.NewProductionConfig()
	if debug {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
