package http

import (
	"net/http"

	"shorts-autopost/infrastructure/utils"

	"github.com/gin-gonic/gin"
)

type IHealthHandler interface {
	Healthz(c *gin.Context)
}

type HealthHandler struct{}

func NewHealthHandler() IHealthHandler {
	return &HealthHandler{}
}

// Healthz returns OK for health checks
func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "time": utils.GetCurrentTime()})
}
