package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/maxviazov/football-manager-sim/internal/handler"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(cfgPath *string) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, *cfgPath, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			if port == 0 {
				port = a.cfg.App.Port
			}
			if a.cfg.App.Env == "prod" {
				gin.SetMode(gin.ReleaseMode)
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           handler.NewRouter(a.cfg.HTTP, a.pinger, a.svc, a.log),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info().Int("port", port).Msg("http server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from app.port)")
	return cmd
}
