// Package main is the entry point for the gpumon agent. It loads
// configuration, discovers GPU devices, starts the sampling engine, and
// serves the local read-only API until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gpumon-app/agent/internal/api"
	"github.com/gpumon-app/agent/internal/config"
	"github.com/gpumon-app/agent/internal/device"
	"github.com/gpumon-app/agent/internal/export"
	"github.com/gpumon-app/agent/internal/sampler"
	"github.com/gpumon-app/agent/internal/source"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "", "Path to configuration file (default: auto-discover)")
	listenAddr  = flag.String("listen", "", "Listen address override for the local API")
	showVersion = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("gpumon-agent %s\n", version)
		os.Exit(0)
	}

	path := *configPath
	if path == "" {
		path = config.Locate()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	logger.Info("Starting gpumon agent",
		zap.String("version", version),
		zap.String("listen", cfg.Server.Listen))

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	runAgent(ctx, cfg, logger)
	logger.Info("Agent stopped")
}

// runAgent wires discovery, the monitor, the exporter, and the API server
// together. It blocks until the context is cancelled.
func runAgent(ctx context.Context, cfg *config.Config, logger *zap.Logger) {
	// Discover GPU devices and kick off best-effort name resolution.
	var devices []device.Device
	for _, g := range device.Discover(ctx, cfg.Devices.BasePath, logger) {
		g.ResolveName(ctx, logger)
		devices = append(devices, g)
	}
	for _, g := range device.DiscoverNVIDIA(ctx, logger) {
		devices = append(devices, g)
	}
	if len(devices) == 0 {
		logger.Warn("No GPU devices found, sampling system series only")
	}

	monitor := sampler.New(
		cfg.Sampling.Interval.Duration,
		cfg.Sampling.ReadTimeout.Duration,
		cfg.Sampling.History,
		logger,
	)
	for _, d := range devices {
		if err := monitor.Register(device.UsageSource(d)); err != nil {
			logger.Fatal("Failed to register source", zap.Error(err))
		}
		if err := monitor.Register(device.MemUsageSource(d)); err != nil {
			logger.Fatal("Failed to register source", zap.Error(err))
		}
	}
	if err := monitor.Register(source.NewCPUSource()); err != nil {
		logger.Fatal("Failed to register source", zap.Error(err))
	}
	if err := monitor.Register(source.NewMemorySource()); err != nil {
		logger.Fatal("Failed to register source", zap.Error(err))
	}
	if err := monitor.Register(source.NewDiskSource(cfg.Devices.DiskMount)); err != nil {
		logger.Fatal("Failed to register source", zap.Error(err))
	}

	if cfg.Export.Enabled {
		exporter := export.New(cfg.Export.URL, cfg.Export.Token, logger)
		go exporter.Run(ctx)
		monitor.OnUpdate(func() {
			exporter.Enqueue(monitor.Snapshot())
		})
	}

	monitor.Start()
	defer monitor.Stop()

	srv := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: api.New(monitor, devices, cfg.Chart, version, logger).Router(),
	}

	go func() {
		logger.Info("API listening", zap.String("addr", cfg.Server.Listen))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("API shutdown incomplete", zap.Error(err))
	}
}

// initLogger creates a zap logger based on the configuration.
// It outputs to console and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
