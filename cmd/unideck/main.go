package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unideck/unideck/internal/attribution"
	"github.com/unideck/unideck/internal/epic"
	"github.com/unideck/unideck/internal/event"
	"github.com/unideck/unideck/internal/gog"
	"github.com/unideck/unideck/internal/panel"
	"github.com/unideck/unideck/internal/registry"
	"github.com/unideck/unideck/internal/server"
	"github.com/unideck/unideck/internal/steam"
	"github.com/unideck/unideck/internal/version"
	"github.com/unideck/unideck/pkg/provider"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Unideck server starting", zap.String("version", version.Short()))

	// Load configuration
	config, err := server.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Create the event bus and provider registry
	bus := event.NewBus(logger)
	reg := registry.New(logger)

	// Register all providers (compile-time composition). The panel goes
	// first so its subscription is live before any storefront provider
	// publishes its initial library snapshot during Start.
	providers := []provider.Provider{
		panel.New(bus, reg),
		attribution.New(),
		steam.New(bus),
		epic.New(bus),
		gog.New(bus),
	}
	for _, p := range providers {
		if err := reg.Register(p); err != nil {
			logger.Fatal("failed to register provider", zap.Error(err))
		}
	}

	// Initialize all providers
	if err := reg.InitAll(config); err != nil {
		logger.Fatal("failed to initialize providers", zap.Error(err))
	}

	// Start providers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reg.StartAll(ctx); err != nil {
		logger.Fatal("failed to start providers", zap.Error(err))
	}

	// Create and start HTTP server
	addr := config.GetString("server.host") + ":" + config.GetString("server.port")
	if addr == ":" {
		addr = "127.0.0.1:8742"
	}
	srv := server.New(addr, reg, logger)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("Unideck server ready", zap.String("addr", addr))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	reg.StopAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("Unideck server stopped")
}
