package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shorts-autopost/infrastructure/configuration"
	"shorts-autopost/infrastructure/logger"
	"shorts-autopost/infrastructure/runlock"
	httpHandler "shorts-autopost/interfaces/http"
	"shorts-autopost/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP trigger API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := &configuration.C
			if cmd.Flags().Changed("port") {
				cfg.App.Port = port
			}
			if cfg.App.SecretKey == "" {
				logger.GetLogger().Warn("SECRET_KEY is not set, every API request will be rejected")
			}

			app, err := newApplication(cmd.Context(), cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer app.Close()

			var locker httpHandler.IRunLocker
			if cfg.App.RunLockFile != "" {
				locker = runlock.NewFileLock(cfg.App.RunLockFile)
			}

			gin.SetMode(gin.ReleaseMode)
			router := server.InitiateRouter(
				httpHandler.NewHealthHandler(),
				httpHandler.NewRunHandler(app.upload, locker),
				cfg.App.SecretKey,
				cfg.App.AllowOrigin,
			)
			return serve(cmd.Context(), &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.App.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overrides APP_PORT | example: --port=8080")
	return cmd
}

// serve runs httpServer until ctx is cancelled, then shuts it down gracefully
func serve(ctx context.Context, httpServer *http.Server) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.GetLogger().WithField("addr", httpServer.Addr).Info("Starting application")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.GetLogger().Info("Application shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		return err
	}
	return nil
}
