package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/brewgen/brewgen/config"
	"github.com/brewgen/brewgen/errors"
	"github.com/brewgen/brewgen/server"
)

var (
	configFile = flag.String("config", "config.yaml", "Path to configuration file")
	validate   = flag.Bool("validate", false, "Validate configuration and exit")
	version    = flag.Bool("version", false, "Print version and exit")
)

const Version = "v0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("brewgen %s\n", Version)
		os.Exit(0)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	errors.SetLogger(logger)

	if *validate {
		if _, err := config.LoadFile(*configFile); err != nil {
			fmt.Printf("Configuration is invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	srv, err := newServer(logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

// newServer watches the config file when it exists; otherwise it runs on
// defaults, with the API key taken from the environment.
func newServer(logger *zap.Logger) (*server.Server, error) {
	if _, err := os.Stat(*configFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		logger.Info("No config file found, using defaults",
			zap.String("path", *configFile),
		)
		cfg := config.DefaultConfig()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default config: %w", err)
		}
		return server.NewServer(cfg, logger), nil
	}
	return server.NewServerFromFile(*configFile, logger)
}
