package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/claims-intake/internal/config"
	"github.com/garyjia/claims-intake/internal/container"
	httpapi "github.com/garyjia/claims-intake/internal/interfaces/http"
	"github.com/garyjia/claims-intake/pkg/utils"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
		Service:    httpapi.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("Server exited successfully")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting claims intake service",
		zap.Int("port", cfg.Server.Port),
		zap.Float64("max_auto_approve_amount", cfg.Adjudication.MaxAutoApproveAmount),
		zap.Float64("required_ai_confidence", cfg.Adjudication.RequiredAIConfidence),
		zap.Float64("max_fraud_score", cfg.Adjudication.MaxFraudScore))

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	if err := c.Start(); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("Failed to close container", zap.Error(err))
		}
	}()

	gin.SetMode(cfg.Server.Mode)

	server, err := c.HTTPServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}
