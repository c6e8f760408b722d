package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomz197/frogduel/internal/config"
	"github.com/tomz197/frogduel/internal/logging"
	"github.com/tomz197/frogduel/internal/web"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, "web")

	srv := web.New(net.JoinHostPort(cfg.Web.Host, cfg.Web.Port), web.RulesFromConfig(cfg), logger)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("web server stopped")
	return nil
}
