package server

import (
	"net/http"
	"time"

	"creator-dashboard/domain/dto"
	httpHandler "creator-dashboard/interfaces/http"
	"creator-dashboard/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	dashboardHandler httpHandler.IDashboardHandler,
	healthHandler httpHandler.IHealthHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:4200", "http://localhost:3000", "https://localhost:4200", "https://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, dto.InvalidMethod(ctx.Request.Method))
	})

	router.POST("/healthz", healthHandler.Healthz)

	api := router.Group("api")
	api.Use(middleware.Auth())

	api.GET("/channel/stats", dashboardHandler.GetChannelStats)

	youtube := api.Group("/youtube")
	{
		youtube.GET("/top-videos", dashboardHandler.GetTopVideos)
		youtube.GET("/search", dashboardHandler.SearchVideos)
		youtube.POST("/refresh", dashboardHandler.RefreshVideos)
		youtube.GET("/videos/:videoId", dashboardHandler.GetVideoMirror)
	}

	return router
}
