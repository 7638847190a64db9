package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	grpcadapter "github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/grpc"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/encoder"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/httpapi"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/adapters/media"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/pkg/grpcserver"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/pkg/httpserver"
	"github.com/cp25sy5-modjot/ocr-wrapper-service/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var httpAddr string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			if httpAddr != "" {
				a.cfg.HTTPAddr = httpAddr
			}
			return serve(cmd.Context(), a)
		},
	}
	c.Flags().StringVar(&httpAddr, "http-addr", "", "HTTP listen address (overrides config and HTTP_ADDR)")
	return c
}

func serve(parent context.Context, a *app) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg := a.cfg
	logger := a.logger
	ctx = logger.WithContext(ctx)

	orch := usecase.NewOrchestrator(a.registry, media.Inspector{}, a.rasterizer, usecase.OrchestratorConfig{
		Workers:     cfg.Workers,
		FileTimeout: cfg.FileTimeout,
	})
	handler := httpapi.NewHandler(a.registry, orch, encoder.New(), httpapi.Options{
		MaxUploadBytes:     cfg.MaxUploadBytes,
		ValidateModels:     cfg.ValidateModels,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	httpSrv := httpserver.New(cfg.HTTPAddr, handler.Routes())

	grpcSrv := grpcserver.New(cfg.GRPCAddr)
	reporter := grpcadapter.RegisterHealthReporter(grpcSrv.Server, grpcSrv.Health, a.registry, a.registry.Names())
	go reporter.Run(ctx, cfg.HealthInterval)

	errCh := make(chan error, 2)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Strs("providers", a.registry.Names()).Msg("OCR HTTP API listening")
		errCh <- httpSrv.Start()
	}()
	go func() {
		logger.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC health listening")
		errCh <- grpcSrv.Start()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down...")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	grpcSrv.Stop()
	return runErr
}
