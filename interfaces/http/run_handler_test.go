package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/runlock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsecase struct {
	calls int
}

func (s *stubUsecase) Run(ctx context.Context) (*model.RunResult, error) {
	s.calls++
	return &model.RunResult{State: model.RunStateDone}, nil
}

func (s *stubUsecase) Status(ctx context.Context) (*model.QueueStatus, error) {
	return &model.QueueStatus{}, nil
}

func postRun(handler IRunHandler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/api/runs", nil)
	handler.Run(ctx)
	return w
}

func TestRunHandler_FileLockHeldElsewhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autopost.lock")
	other := runlock.NewFileLock(path)
	require.NoError(t, other.Lock(0))
	defer other.Unlock()

	uc := &stubUsecase{}
	w := postRun(NewRunHandler(uc, runlock.NewFileLock(path)))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, uc.calls)
}

func TestRunHandler_ReleasesFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autopost.lock")
	uc := &stubUsecase{}
	handler := NewRunHandler(uc, runlock.NewFileLock(path))

	assert.Equal(t, http.StatusOK, postRun(handler).Code)
	assert.Equal(t, http.StatusOK, postRun(handler).Code)
	assert.Equal(t, 2, uc.calls)

	// free for other processes again
	other := runlock.NewFileLock(path)
	require.NoError(t, other.Lock(time.Second))
	require.NoError(t, other.Unlock())
}
