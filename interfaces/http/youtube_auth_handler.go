package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	youtubeclient "shorts-autopost/infrastructure/clients/youtube"
	"shorts-autopost/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// IYouTubeAuthHandler serves the loopback side of the installed-app flow
type IYouTubeAuthHandler interface {
	GetAuthURL(ctx *gin.Context)
	HandleCallback(ctx *gin.Context)
}

type callbackResult struct {
	token *oauth2.Token
	err   error
}

// YouTubeAuthHandler implements YouTube OAuth2 authentication
type YouTubeAuthHandler struct {
	oauth2Config *oauth2.Config
	state        string
	result       chan callbackResult
}

// NewYouTubeAuthHandler creates a handler expecting state on the callback
func NewYouTubeAuthHandler(oauth2Config *oauth2.Config, state string) *YouTubeAuthHandler {
	return &YouTubeAuthHandler{
		oauth2Config: oauth2Config,
		state:        state,
		result:       make(chan callbackResult, 1),
	}
}

// GetAuthURL handles GET / by redirecting to the consent screen
func (h *YouTubeAuthHandler) GetAuthURL(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, youtubeclient.AuthCodeURL(h.oauth2Config, h.state))
}

// HandleCallback handles GET /callback
func (h *YouTubeAuthHandler) HandleCallback(ctx *gin.Context) {
	// Check for OAuth error first
	if errorParam := ctx.Query("error"); errorParam != "" {
		err := fmt.Errorf("OAuth error: %s", errorParam)
		h.deliver(callbackResult{err: err})
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":       err.Error(),
			"description": ctx.Query("error_description"),
		})
		return
	}

	if ctx.Query("state") != h.state {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "State parameter mismatch"})
		return
	}

	code := ctx.Query("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code not found"})
		return
	}

	token, err := h.oauth2Config.Exchange(ctx.Request.Context(), code)
	if err != nil {
		h.deliver(callbackResult{err: fmt.Errorf("exchange authorization code: %w", err)})
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to exchange code for token",
			"message": err.Error(),
		})
		return
	}

	h.deliver(callbackResult{token: token})
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Authentication successful! You can close this window.",
	})
}

// Token waits for the callback to complete
func (h *YouTubeAuthHandler) Token(ctx context.Context) (*oauth2.Token, error) {
	select {
	case res := <-h.result:
		return res.token, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// first callback wins
func (h *YouTubeAuthHandler) deliver(res callbackResult) {
	select {
	case h.result <- res:
	default:
	}
}

// LoopbackConsent runs the consent flow with a local callback server on addr,
// e.g. "127.0.0.1:0" for a random free port.
func LoopbackConsent(addr string, out io.Writer) youtubeclient.ConsentFunc {
	return func(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("listen for oauth callback: %w", err)
		}

		loopback := *conf
		loopback.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())
		handler := NewYouTubeAuthHandler(&loopback, youtubeclient.GenerateState())

		router := gin.New()
		router.Use(gin.Recovery())
		router.GET("/", handler.GetAuthURL)
		router.GET("/callback", handler.HandleCallback)

		server := &http.Server{Handler: router}
		go func() {
			if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.GetLogger().WithField("error", err).Error("OAuth callback server failed")
			}
		}()
		defer server.Close()

		fmt.Fprintf(out, "Open the following link in your browser to authorize uploads:\n%s\n", youtubeclient.AuthCodeURL(&loopback, handler.state))
		logger.GetLogger().WithField("redirectURL", loopback.RedirectURL).Info("Waiting for OAuth callback")

		return handler.Token(ctx)
	}
}
