// Package server wires the HTTP routes of the video API.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sora2-studio/backend/config"
	"github.com/sora2-studio/backend/internal/middleware"
	"github.com/sora2-studio/backend/internal/realtime"
	"github.com/sora2-studio/backend/internal/videos"
)

// Deps are the collaborators the router needs. Hub may be nil to disable /ws.
type Deps struct {
	Config *config.Config
	Videos *videos.Handler
	Hub    *realtime.Hub
	Logger *zap.Logger
	Now    func() time.Time
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.Config.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(d.Logger))

	api := router.Group("/api")
	{
		api.GET("/health", Health(d.Config.Service.Name, d.Now))
		api.POST("/generate", d.Videos.Generate)
		api.GET("/videos", d.Videos.List)
		api.GET("/video/:id", d.Videos.GetByID)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Hub != nil {
		router.GET("/ws", realtime.ServeWs(d.Hub, d.Logger))
	}

	router.NoRoute(Static(d.Config.Server.StaticDir))
	return router
}
