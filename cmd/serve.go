package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"textsummarizer/internal/config"
	"textsummarizer/internal/gateway"
	"textsummarizer/internal/relay"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the relay HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), newLogger(os.Stdout))
		},
	}
}

func runServe(ctx context.Context, log *slog.Logger) error {
	start := time.Now()

	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load server config",
			"error", err)

		return err
	}

	gw := initGateway(ctx, cfg, log)
	metrics := relay.NewMetrics()
	srv := relay.NewServer(relay.NewService(gw, metrics, log), metrics, cfg.Addr(), log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if startErr := srv.Start(); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", startErr)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.InfoContext(gctx, "Shutdown is requested",
			"uptimeSeconds", time.Since(start).Seconds())

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			return fmt.Errorf("shutdown: %w", shutdownErr)
		}
		return nil
	})

	err = g.Wait()
	if err != nil {
		log.ErrorContext(ctx, "Relay stopped with error",
			"error", err,
			"addr", cfg.Addr())
	}

	log.InfoContext(ctx, "Relay is stopped",
		"uptimeSeconds", time.Since(start).Seconds())

	return err
}

func initGateway(ctx context.Context, cfg config.ServerConfig, log *slog.Logger) gateway.Gateway {
	if cfg.Provider == config.ProviderOpenAI {
		log.InfoContext(ctx, "OpenAI gateway is initialized",
			"provider", cfg.Provider)

		return gateway.NewOpenAI(cfg.OpenAIAPIKey)
	}

	log.InfoContext(ctx, "Hugging Face gateway is initialized",
		"provider", cfg.Provider,
		"url", cfg.HFAPIURL,
		"timeout", cfg.GatewayTimeout)

	return gateway.NewHuggingFace(cfg.HFAPIURL, cfg.HFToken, cfg.GatewayTimeout)
}
