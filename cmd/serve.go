package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jagwell/jagwell/config"
	"github.com/jagwell/jagwell/endpoint"
	"github.com/jagwell/jagwell/util"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var errMissingJWTSecret = errors.New("JWTSECRET must be set")

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if config.LoadConfig().JWTSecret == "" {
		return errMissingJWTSecret
	}

	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	util.SetJWTSecret(cfg.JWTSecret)

	if _, err := config.ConnectRedis(); err != nil {
		util.Log().Warn().Err(err).Msg("redis unavailable, token revocation and rate limiting disabled")
	}

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           endpoint.SetupRouter(cfg, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		util.Log().Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	util.Log().Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	util.Log().Info().Msg("server stopped")
	return nil
}
