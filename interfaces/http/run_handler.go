package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/logger"
	"shorts-autopost/infrastructure/runlock"
	"shorts-autopost/usecase"

	"github.com/gin-gonic/gin"
)

// IRunLocker guards a run against other processes
type IRunLocker interface {
	Lock(timeout time.Duration) error
	Unlock() error
}

type IRunHandler interface {
	Run(c *gin.Context)
	Status(c *gin.Context)
}

type RunHandler struct {
	uploadUsecase usecase.IUploadUsecase
	locker        IRunLocker // optional
	mu            sync.Mutex
}

func NewRunHandler(uploadUsecase usecase.IUploadUsecase, locker IRunLocker) IRunHandler {
	return &RunHandler{uploadUsecase: uploadUsecase, locker: locker}
}

// Run handles POST /api/runs. Only one run may be in flight.
func (h *RunHandler) Run(ctx *gin.Context) {
	if !h.mu.TryLock() {
		ctx.JSON(http.StatusConflict, gin.H{"error": runlock.ErrLocked.Error()})
		return
	}
	defer h.mu.Unlock()

	if h.locker != nil {
		if err := h.locker.Lock(0); err != nil {
			if errors.Is(err, runlock.ErrLocked) {
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to acquire run lock", "message": err.Error()})
			return
		}
		defer h.locker.Unlock()
	}

	logger.GetLogger().WithField("subject", ctx.GetString("subject")).Info("Run triggered")

	// the upload must not stop when the caller hangs up
	runCtx := context.WithoutCancel(ctx.Request.Context())
	result, err := h.uploadUsecase.Run(runCtx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Triggered run aborted")
		ctx.JSON(statusFor(err), gin.H{
			"success": false,
			"error":   "Run aborted",
			"data":    result,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// Status handles GET /api/queue/status
func (h *RunHandler) Status(ctx *gin.Context) {
	status, err := h.uploadUsecase.Status(ctx.Request.Context())
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{
			"error":   "Failed to read queue",
			"message": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

func statusFor(err error) int {
	if errors.Is(err, model.ErrAuthentication) || errors.Is(err, model.ErrQueueAccess) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
