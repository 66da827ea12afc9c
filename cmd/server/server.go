package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	appconfig "FinTrack/config"
	"FinTrack/internal/middleware"
	"FinTrack/internal/router"
	"FinTrack/pkg/logger"
	"FinTrack/pkg/metrics"
	pkgotel "FinTrack/pkg/otel"
	"FinTrack/pkg/slider"
	"FinTrack/pkg/sms"
	"FinTrack/pkg/snowflake"
	"FinTrack/pkg/token"
	"FinTrack/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	cfg := appconfig.Cfg
	if err := cfg.Validate(); err != nil {
		logger.Logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// 追踪和指标须在存储层之前初始化，gorm / redis / amqp 的埋点依赖全局 provider
	var (
		serverOpts    []config.Option
		observability []app.HandlerFunc
	)
	if cfg.OTelEnabled {
		shutdown, err := pkgotel.InitOpenTelemetry(ctx, pkgotel.Config{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Environment:    cfg.Environment,
			OTLPEndpoint:   cfg.OTelEndpoint,
			SampleRatio:    cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
			}
		}()

		if err := metrics.InitMetrics(); err != nil {
			logger.Logger.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		if err := middleware.InitMetrics(otel.Meter(cfg.ServiceName + ".http")); err != nil {
			logger.Logger.Fatal("Failed to initialize HTTP metrics", zap.Error(err))
		}

		tracerOpt, tracingMW := middleware.NewServerTracerConfig()
		serverOpts = append(serverOpts, tracerOpt)
		observability = append(observability, tracingMW, middleware.OpenTelemetryMiddleware())
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(cfg.SnowflakeMachineID, cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := sms.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize SMS service, contact codes cannot be sent", zap.Error(err))
	}

	if err := slider.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize slider service, slider verification will fail", zap.Error(err))
	}

	// middleware 依赖 token
	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	}
	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	serverOpts = append(serverOpts, server.WithHostPorts(addr), server.WithExitWaitTime(3*time.Second))
	h := server.New(serverOpts...)

	router.Register(h.Engine, observability...)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.ServiceName),
		zap.String("addr", addr),
		zap.String("environment", cfg.Environment),
		zap.Bool("otel", cfg.OTelEnabled),
	)

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
