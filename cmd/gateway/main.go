// Command gateway runs the Bitreon backend: the REST API in front of the
// bitreon-core contract on the Stacks chain.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/bitreon-labs/bitreon/internal/app"
	"github.com/bitreon-labs/bitreon/internal/app/httpapi"
	"github.com/bitreon-labs/bitreon/internal/bitreon"
	"github.com/bitreon-labs/bitreon/internal/chain"
	"github.com/bitreon-labs/bitreon/internal/config"
	"github.com/bitreon-labs/bitreon/internal/middleware"
	"github.com/bitreon-labs/bitreon/pkg/logger"
)

func main() {
	log := logger.NewDefault("gateway")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("load configuration")
		os.Exit(1)
	}

	client, err := chain.NewClient(chain.Config{
		BaseURL: cfg.NodeURL,
		Timeout: cfg.NodeTimeout,
	})
	if err != nil {
		log.WithError(err).Error("configure stacks client")
		os.Exit(1)
	}
	facade := bitreon.New(client, bitreon.Config{
		ContractAddress:  cfg.ContractAddress,
		ContractName:     cfg.ContractName,
		SBTCAddress:      cfg.SBTCAddress,
		SBTCContractName: cfg.SBTCContractName,
	}, log)

	application, err := app.New(cfg, facade, app.Stores{}, log)
	if err != nil {
		log.WithError(err).Error("initialise application")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("start application")
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	limiter.StartCleanup(10 * time.Minute)
	cors := middleware.NewCORSMiddleware(cfg.Origins())

	handler := cors.Handler(limiter.Handler(httpapi.NewHandler(application)))

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("gateway listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.WithError(err).Error("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application shutdown")
	}
	log.Info("gateway stopped")
}
