package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/vaporisers/reelist/internal/server"
	"github.com/vaporisers/reelist/internal/shared"
	"github.com/vaporisers/reelist/internal/web"
)

// Serve hosts the password recovery page until interrupted.
//
// Recovery emails requested with 'reelist auth reset' link back to this
// server, which completes the reset against the auth service.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	open := cmd.Bool("open")

	if r.client == nil {
		return fmt.Errorf("%w: auth service not initialized", shared.ErrServiceUnavailable)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	router := server.NewBasicRouter()
	router.Handler(server.NewRecoveryHandler(r.client, renderer, r.logger))

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	r.logger.Info("serving recovery page", "addr", addr)
	r.writePlain("Recovery page available at http://%s/reset\n", addr)

	if open {
		if err := shared.OpenBrowser(fmt.Sprintf("http://%s/reset", addr)); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
