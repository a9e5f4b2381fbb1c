package server

import (
	"time"

	"shorts-autopost/domain/model"
	httpHandler "shorts-autopost/interfaces/http"
	"shorts-autopost/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitiateRouter(
	healthHandler httpHandler.IHealthHandler,
	runHandler httpHandler.IRunHandler,
	secretKey string,
	allowOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if len(allowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     allowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler.Healthz)

	api := router.Group("api")
	api.Use(middleware.Auth(secretKey, model.ScopeRun))
	api.GET("/queue/status", runHandler.Status)
	api.POST("/runs", runHandler.Run)

	return router
}
